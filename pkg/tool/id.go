package tool

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// refSeq seeds the random-looking suffix of reference ids. Starting from a
// random offset and incrementing keeps suffixes unique within a millisecond
// even under tight-loop generation.
var refSeq = func() *uint64 {
	n := uint64(rand.Int63n(1_000_000))
	return &n
}()

// NewReference returns a human-traceable reference id of the form
// <PREFIX>-<unix-millis>-<6 digits>, e.g. DON-1699999999999-482913.
// Reference ids are generated before the transaction exists server-side and
// never change once assigned.
func NewReference(prefix string) string {
	suffix := atomic.AddUint64(refSeq, 1) % 1_000_000
	return fmt.Sprintf("%s-%d-%06d", prefix, time.Now().UnixMilli(), suffix)
}
