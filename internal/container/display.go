package container

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var xvfbPattern = regexp.MustCompile(`Xvfb\s+:(\d+)`)

// DisplayChooser picks a free X display number by scanning the host
// process table for running Xvfb instances.
type DisplayChooser struct {
	Start int
	End   int
	run   runFunc
}

// NewDisplayChooser creates a chooser over the inclusive display range.
func NewDisplayChooser(start, end int) *DisplayChooser {
	return &DisplayChooser{Start: start, End: end, run: runCommand}
}

// Choose returns a display string like ":99" that no Xvfb currently uses.
// If the process table cannot be read, or every display in range appears
// taken, the range start is returned and the launch proceeds anyway.
func (d *DisplayChooser) Choose(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	used := make(map[int]bool)
	if stdout, _, err := d.run(ctx, "ps", "-ef"); err == nil {
		for _, m := range xvfbPattern.FindAllStringSubmatch(stdout, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil {
				used[n] = true
			}
		}
	}

	for n := d.Start; n <= d.End; n++ {
		if !used[n] {
			return fmt.Sprintf(":%d", n)
		}
	}
	return fmt.Sprintf(":%d", d.Start)
}
