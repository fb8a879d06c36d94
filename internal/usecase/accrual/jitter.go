package accrual

import (
	"math/rand/v2"
	"sync"

	"github.com/shopspring/decimal"
)

// Jitter perturbs a display-only profit figure.
type Jitter interface {
	Apply(profit decimal.Decimal) decimal.Decimal
}

// JitterSpread is the symmetric band applied by RandomJitter (±2.5%).
var JitterSpread = decimal.RequireFromString("0.025")

// RandomJitter scales profit by a uniform factor in [1-JitterSpread, 1+JitterSpread].
// Results are never negative.
type RandomJitter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomJitter seeds a jitter source; the same seeds replay the same sequence.
func NewRandomJitter(seed1, seed2 uint64) *RandomJitter {
	return &RandomJitter{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (j *RandomJitter) Apply(profit decimal.Decimal) decimal.Decimal {
	j.mu.Lock()
	f := j.rng.Float64()*2 - 1
	j.mu.Unlock()

	factor := decimal.NewFromInt(1).Add(JitterSpread.Mul(decimal.NewFromFloat(f)))
	out := profit.Mul(factor).Round(8)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// NoJitter returns profit unchanged.
type NoJitter struct{}

func (NoJitter) Apply(profit decimal.Decimal) decimal.Decimal { return profit }

// Live is Compute followed by jitter on the profit. Only for display: the
// Completed flag and Progress come from the unjittered computation.
func Live(r Result, j Jitter) decimal.Decimal {
	if j == nil || r.Completed {
		return r.CurrentProfit
	}
	return j.Apply(r.CurrentProfit)
}
