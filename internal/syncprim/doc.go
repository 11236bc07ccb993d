// Package syncprim provides the blocking primitives the thread layer is
// built on: an owner-tracking Mutex, a bounded counting Semaphore and a
// saturating LightSemaphore used for wake-up signalling.
//
// Mutex and Semaphore queue blocked callers in FIFO order and hand the
// resource directly to the oldest waiter, so no waiter starves regardless
// of how the Go scheduler orders goroutines.
package syncprim
