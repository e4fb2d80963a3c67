// Package session provides the in-memory core.SessionStore used by the
// runner. Sessions live for the lifetime of the process.
package session
