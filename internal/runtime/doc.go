// Package runtime holds the session controller and the context window manager.
//
// The controller applies one submission per call and returns a new Session
// snapshot; it performs no I/O. Persistence, agents and transports live in
// the adapters and the runner.
package runtime
