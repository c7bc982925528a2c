/*
Package runner drives episodes end to end.

It is the bridge between the engine and the agent under evaluation: each turn it
computes the context window, asks the agent for a reply under a deadline, submits the
reply and persists the resulting session.

# Usage

	r := runner.New(engine, agent,
		runner.WithStore(store),
		runner.WithAgentTimeout(60*time.Second),
	)

	session, err := r.Run(ctx, "", 8)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(session.Status)

RunBatch runs several sizes in parallel with a concurrency limit.
*/
package runner
