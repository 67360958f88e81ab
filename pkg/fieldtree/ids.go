package fieldtree

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IDGenerator hands out node identifiers. Implementations must never return
// the same id twice within a process.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function into an IDGenerator.
type IDGeneratorFunc func() string

// NewID calls the underlying function.
func (fn IDGeneratorFunc) NewID() string {
	return fn()
}

// TimestampIDs returns the default generator: a base36 nanosecond timestamp
// followed by a random suffix.
func TimestampIDs() IDGenerator {
	return IDGeneratorFunc(func() string {
		return strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + randomSuffix()
	})
}

// UUIDs returns a generator producing random (v4) UUIDs.
func UUIDs() IDGenerator {
	return IDGeneratorFunc(uuid.NewString)
}

// SequenceIDs returns a deterministic generator ("<prefix>1", "<prefix>2", ...)
// intended for tests and reproducible fixtures.
func SequenceIDs(prefix string) IDGenerator {
	var counter atomic.Uint64
	return IDGeneratorFunc(func() string {
		return prefix + strconv.FormatUint(counter.Add(1), 10)
	})
}

func randomSuffix() string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return strconv.FormatUint(fallbackCounter.Add(1), 36)
	}
	return hex.EncodeToString(buf[:])
}

var fallbackCounter atomic.Uint64
