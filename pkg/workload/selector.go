package workload

import (
	"math/rand"

	"github.com/vertex-lab/flockbench/pkg/hashing"
)

// slotOffset is added to the follow slot before it's multiplied with the userID.
const slotOffset int64 = 2

// Selector picks the users that a user follows. The follows of userID are
// the values Target(userID, slot) for slot in [0, slots-1]; Next() draws
// one of them uniformly at random.
//
// A Selector belongs to one worker; it must not be shared between goroutines.
type Selector struct {
	slots    int64
	numUsers int64
	rng      *rand.Rand
	hasher   *hashing.Hasher
}

// NewSelector() returns a Selector over the given number of follow slots and users.
func NewSelector(slots, numUsers int64, rng *rand.Rand) (*Selector, error) {
	if slots < 1 {
		return nil, ErrInvalidSlots
	}

	if numUsers < 1 {
		return nil, ErrInvalidNumUsers
	}

	if rng == nil {
		return nil, ErrNilRandPointer
	}

	return &Selector{
		slots:    slots,
		numUsers: numUsers,
		rng:      rng,
		hasher:   hashing.NewHasher(),
	}, nil
}

// NextSlot() returns a follow slot drawn uniformly from [0, slots-1].
func (s *Selector) NextSlot() int64 {
	return s.rng.Int63n(s.slots)
}

// Target() returns the user followed by userID in the given slot.
// The product wraps around like any int64 multiplication.
func (s *Selector) Target(userID, slot int64) int64 {
	return Normalize(s.hasher.Int64(userID*(slot+slotOffset)), s.numUsers)
}

// Next() returns the user followed by userID in a random slot.
func (s *Selector) Next(userID int64) int64 {
	return s.Target(userID, s.NextSlot())
}

// Normalize() maps h into [0, n). Negative values of h wrap around n, so
// Normalize(-1, n) == n-1. n must be positive.
func Normalize(h, n int64) int64 {
	r := h % n
	if r < 0 {
		r += n
	}
	return r
}
