// Package ipc provides the inter-thread and inter-process communication
// facilities: a bounded message Queue built on the package's own
// synchronisation primitives, an anonymous OS Pipe, and thin TCP/UDP socket
// wrappers.
//
// Every error returned is a *primitives.Error whose code classifies the
// failure (Timeout, InvalidState, InvalidArgument, ...) and whose cause is
// the underlying library error, except io.EOF, which is returned as is.
package ipc
