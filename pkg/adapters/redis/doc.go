// Package redis provides Redis-backed session persistence and distributed locking.
package redis
