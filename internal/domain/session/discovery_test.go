package session

import (
	"context"
	"errors"
	"testing"

	"github.com/xweng-opaida/agent-viewer/internal/infrastructure/logging"
)

// fakeRuntime is a scriptable ContainerRuntime for tests.
type fakeRuntime struct {
	listIDs    []string
	listErr    error
	running    map[string]bool
	runningErr map[string]error
	logs       map[string]string
	logsErr    map[string]error
	stopped    []string
	stopErr    error
	listCalls  int
	logsCalls  int
}

func (f *fakeRuntime) List(ctx context.Context, image string) ([]string, error) {
	f.listCalls++
	return f.listIDs, f.listErr
}

func (f *fakeRuntime) IsRunning(ctx context.Context, id string) (bool, error) {
	if err := f.runningErr[id]; err != nil {
		return false, err
	}
	return f.running[id], nil
}

func (f *fakeRuntime) Logs(ctx context.Context, id string) (string, error) {
	f.logsCalls++
	if err := f.logsErr[id]; err != nil {
		return "", err
	}
	return f.logs[id], nil
}

func (f *fakeRuntime) Stop(ctx context.Context, id string) error {
	f.stopped = append(f.stopped, id)
	return f.stopErr
}

func TestParseVNCPort(t *testing.T) {
	logs := "05/09/2024 10:00:01 Autoprobing TCP port\n" +
		"05/09/2024 10:00:01 Listening for VNC connections on TCP port 5905\n"

	port, ok := ParseVNCPort(logs)
	if !ok || port != 5905 {
		t.Fatalf("Expected (5905, true), got (%d, %v)", port, ok)
	}

	if _, ok := ParseVNCPort("no vnc here"); ok {
		t.Error("Expected no match on unrelated logs")
	}
}

func TestDiscoverMixedContainers(t *testing.T) {
	rt := &fakeRuntime{
		listIDs: []string{"good", "nolog"},
		running: map[string]bool{"good": true, "nolog": true},
		logs: map[string]string{
			"good":  "Listening for VNC connections on TCP port 5905",
			"nolog": "container started, nothing else",
		},
	}
	d := NewDiscoverer(rt, "chrome-gui", logging.NewNop())

	got := d.Discover(context.Background())

	if len(got) != 1 {
		t.Fatalf("Expected exactly one session, got %v", got)
	}
	if got["good"] != 5905 {
		t.Errorf("Expected port 5905 for 'good', got %d", got["good"])
	}
}

func TestDiscoverSkipsStoppedContainers(t *testing.T) {
	rt := &fakeRuntime{
		listIDs: []string{"alive", "dead"},
		running: map[string]bool{"alive": true, "dead": false},
		logs: map[string]string{
			"alive": "Listening for VNC connections on TCP port 5901",
			"dead":  "Listening for VNC connections on TCP port 5902",
		},
	}
	d := NewDiscoverer(rt, "chrome-gui", logging.NewNop())

	got := d.Discover(context.Background())

	if len(got) != 1 {
		t.Fatalf("Expected one session, got %v", got)
	}
	if _, ok := got["dead"]; ok {
		t.Error("Stopped container must not be discovered")
	}
}

func TestDiscoverListFailureDegradesToEmpty(t *testing.T) {
	rt := &fakeRuntime{listErr: errors.New("docker daemon unreachable")}
	d := NewDiscoverer(rt, "chrome-gui", logging.NewNop())

	got := d.Discover(context.Background())

	if len(got) != 0 {
		t.Errorf("Expected empty result on list failure, got %v", got)
	}
}

func TestDiscoverPerContainerFailureIsolated(t *testing.T) {
	rt := &fakeRuntime{
		listIDs: []string{"broken", "good"},
		running: map[string]bool{"broken": true, "good": true},
		logsErr: map[string]error{"broken": errors.New("logs timed out")},
		logs: map[string]string{
			"good": "Listening for VNC connections on TCP port 5903",
		},
	}
	d := NewDiscoverer(rt, "chrome-gui", logging.NewNop())

	got := d.Discover(context.Background())

	if got["good"] != 5903 {
		t.Errorf("Failure on one container must not affect the rest: %v", got)
	}
	if _, ok := got["broken"]; ok {
		t.Error("Container with failing logs must be skipped")
	}
}
