/*
Package session serializes access to stored episodes.

A Manager wraps a ports.SessionStore with per-session locks so concurrent turns
for the same episode run one at a time. With a ports.DistributedLocker the lock
also holds across server replicas sharing one store.
*/
package session
