// Package cli implements the canonrest command line.
//
// The serve command runs the HTTP API in the foreground. The remaining
// commands are thin wrappers over pkg/client that talk to a running server
// selected with --server, printing a table or, with --json, the raw
// resources.
package cli
