// Package kv defines the small byte store used to persist client state
// between runs, with in-memory and file-backed implementations.
// pkg/redis provides a Redis-backed implementation of the same interface.
package kv
