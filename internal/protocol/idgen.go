package protocol

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator allocates sequential integer ids for outbound requests.
// The zero value is ready to use; the first id is 1.
type IDGenerator struct {
	next atomic.Int32
}

// Next returns a fresh integer-backed id.
func (g *IDGenerator) Next() RequestID {
	return IntID(g.next.Add(1))
}

// NewStringID returns a uuid-backed string id, for callers that need
// ids unique across independent streams.
func NewStringID() RequestID {
	return StringID(uuid.New().String())
}
