/*
Package ports defines the driven ports (interfaces) of the towerbench engine.

These interfaces decouple the episode loop from agents, storage backends and
lock services.

# Key Interfaces

  - Agent: the solver under evaluation, called once per turn.
  - SessionStore: persists and loads episodes.
  - DistributedLocker: serializes concurrent turns on one episode across replicas.
*/
package ports
