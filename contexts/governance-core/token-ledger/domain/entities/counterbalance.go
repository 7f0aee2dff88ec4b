package entities

import "time"

// Counterbalance tracks recently-moved weight per (voter, currency) so that
// freshly acquired weight is discounted before it can be mirrored into votes.
// Decayable loses one whole unit of currency for every CounterbalanceDecayRate
// seconds elapsed since LastDecay, never dropping below zero.
type Counterbalance struct {
	Voter      string
	Code       string
	Precision  uint8
	Decayable  WeightQuantity
	Persistent WeightQuantity
	LastDecay  time.Time
}

func NewCounterbalance(voter string, code string, precision uint8, now time.Time) Counterbalance {
	return Counterbalance{
		Voter:      voter,
		Code:       code,
		Precision:  precision,
		Decayable:  ZeroWeight(code, precision),
		Persistent: ZeroWeight(code, precision),
		LastDecay:  now,
	}
}

// DecayedAt returns the decayable amount after applying elapsed-time decay at
// the given rate, without mutating the record.
func (c Counterbalance) DecayedAt(now time.Time, decayRate uint32) WeightQuantity {
	if decayRate == 0 {
		return c.Decayable
	}
	elapsed := now.Unix() - c.LastDecay.Unix()
	if elapsed <= 0 {
		return c.Decayable
	}
	steps := elapsed / int64(decayRate)
	if steps <= 0 {
		return c.Decayable
	}
	decayed := c.Decayable
	decayed.Amount -= steps * WholeUnit(c.Precision)
	return decayed.FloorZero()
}

// Touch applies pending decay, then the signed delta (positive when the voter
// receives weight, negative when they send it), and resets the decay clock.
// The resulting decayable amount is floored at zero.
func (c Counterbalance) Touch(now time.Time, decayRate uint32, delta int64) Counterbalance {
	decayed := c.DecayedAt(now, decayRate)
	decayed.Amount += delta
	c.Decayable = decayed.FloorZero()
	c.LastDecay = now
	return c
}
