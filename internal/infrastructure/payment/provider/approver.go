package provider

import (
	"math/rand"
	"sync"
	"time"
)

// Approver decides simulated provider outcomes from an approval rate in [0,1].
type Approver struct {
	mu     sync.Mutex
	random *rand.Rand
	rate   float64
}

func NewApprover(rate float64) *Approver {
	a := &Approver{random: rand.New(rand.NewSource(time.Now().UnixNano()))}
	a.SetRate(rate)
	return a
}

// Approve draws one outcome.
func (a *Approver) Approve() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case a.rate >= 1:
		return true
	case a.rate <= 0:
		return false
	}
	return a.random.Float64() < a.rate
}

// SetRate adjusts the approval rate (primarily for tests).
func (a *Approver) SetRate(rate float64) {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	a.mu.Lock()
	a.rate = rate
	a.mu.Unlock()
}

// Digits returns n random decimal digits.
func (a *Approver) Digits(n int) string {
	return a.pick("0123456789", n)
}

// Alnum returns n random lowercase alphanumerics.
func (a *Approver) Alnum(n int) string {
	return a.pick("abcdefghijklmnopqrstuvwxyz0123456789", n)
}

// IntRange returns a random integer in [lo, hi].
func (a *Approver) IntRange(lo, hi int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return lo + a.random.Intn(hi-lo+1)
}

func (a *Approver) pick(alphabet string, n int) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[a.random.Intn(len(alphabet))]
	}
	return string(b)
}
