// Package container shells out to the docker CLI and the launch script.
//
// All external ABI parsing lives here: tabular `docker ps` ID lists, the
// `{{.State.Running}}` inspect format, free-text log output, and the
// launcher's JSON descriptor. Nothing outside this package knows what the
// CLI output looks like; the session and bridge packages consume it
// through the interfaces they define.
//
// Every invocation runs under a bounded timeout since the docker daemon
// and the launch script are external processes that can hang.
package container
