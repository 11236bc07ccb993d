package primitives

import (
	"runtime"
	"strconv"
	"sync/atomic"
)

// ThreadID identifies a Thread for its whole lifetime. Zero is never assigned.
type ThreadID uint64

var lastThreadID atomic.Uint64

// NextThreadID allocates a fresh, process-unique ThreadID.
func NextThreadID() ThreadID {
	return ThreadID(lastThreadID.Add(1))
}

func (id ThreadID) String() string {
	return "T" + strconv.FormatUint(uint64(id), 10)
}

// GoroutineID returns the runtime identifier of the calling goroutine.
//
// It parses the header line of runtime.Stack ("goroutine 123 [running]:"),
// which costs on the order of a microsecond. Returns 0 if parsing fails.
func GoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGoroutineID(buf[:n])
}

func parseGoroutineID(buf []byte) int64 {
	const prefix = "goroutine "
	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}
	var id int64
	for _, c := range buf[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int64(c-'0')
	}
	return id
}
