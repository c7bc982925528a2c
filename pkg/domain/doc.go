/*
Package domain contains the core models of the towerbench evaluation engine.

It defines the puzzle state, moves and batches, the per-episode Session record,
its transcript and the bounded Window handed to an agent. The package is kept
pure and free of I/O so every adapter (stores, transports, metrics) shares one
vocabulary.

# Key Entities

  - PuzzleState: an immutable set of peg stacks with a canonical Key.
  - MoveBatch: an ordered list of moves applied as one transaction.
  - Session: counters, budgets, visited states and the transcript of one episode.
  - Window: the recent slice of the transcript plus instructions and current state.
  - Result: the outcome record handed to reporting.
*/
package domain
