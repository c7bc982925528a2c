/*
Package towerbench is a multi-turn evaluation engine that measures how well an
external agent (typically an LLM) solves the Tower of Hanoi when it may submit
moves in batches over many turns.

Each episode starts from a puzzle size. Every turn the agent sees a bounded
window (instructions, the most recent turns and the current pegs) and replies
with a move list. Batches are applied atomically: one illegal move discards
the whole batch. The episode ends when the puzzle is solved, the agent gives
up with an empty list, or a termination policy fires (turn budget, move
budget, repeated identical invalid submissions, or revisiting a state too often).

# Usage

	eng, err := towerbench.New(
		towerbench.WithLimits(domain.DefaultLimits()),
		towerbench.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	session, err := eng.Start(ctx, "episode-1", 3)
	if err != nil {
		return err
	}

	for !session.Terminated() {
		window, err := eng.Window(session)
		if err != nil {
			return err
		}
		reply := ask(window.Messages()) // your model call
		if session, err = eng.Submit(ctx, session, reply); err != nil {
			return err
		}
	}

	fmt.Println(eng.Result(session).Status)

For a ready-made loop with timeouts, persistence and parallel sizes, see the
runner package. The towerbench command exposes the same engine over a CLI, an
HTTP API and the Model Context Protocol.
*/
package towerbench
