// Package agent provides in-process agents: a scripted agent for tests, a reference
// solver, and an interactive agent that reads moves from a terminal.
//
// Model-backed agents live out of process; see the process adapter.
package agent
