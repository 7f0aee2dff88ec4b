package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// WeightQuantity is a fixed-precision amount of a weighting currency.
// Arithmetic is only defined between quantities sharing (code, precision);
// mismatches surface as errors instead of silently mixing units.
type WeightQuantity struct {
	Amount    int64
	Code      string
	Precision uint8
}

func NewWeightQuantity(amount int64, code string, precision uint8) WeightQuantity {
	return WeightQuantity{
		Amount:    amount,
		Code:      strings.ToUpper(strings.TrimSpace(code)),
		Precision: precision,
	}
}

func ZeroWeight(code string, precision uint8) WeightQuantity {
	return NewWeightQuantity(0, code, precision)
}

// WholeUnit is the raw amount representing exactly 1.0 of the currency.
func WholeUnit(precision uint8) int64 {
	unit := int64(1)
	for i := uint8(0); i < precision; i++ {
		unit *= 10
	}
	return unit
}

func (q WeightQuantity) SameCurrency(other WeightQuantity) bool {
	return q.Code == other.Code && q.Precision == other.Precision
}

func (q WeightQuantity) Add(other WeightQuantity) (WeightQuantity, error) {
	if !q.SameCurrency(other) {
		return WeightQuantity{}, fmt.Errorf(
			"currency mismatch: %s(%d) vs %s(%d)", q.Code, q.Precision, other.Code, other.Precision)
	}
	return WeightQuantity{Amount: q.Amount + other.Amount, Code: q.Code, Precision: q.Precision}, nil
}

func (q WeightQuantity) Sub(other WeightQuantity) (WeightQuantity, error) {
	if !q.SameCurrency(other) {
		return WeightQuantity{}, fmt.Errorf(
			"currency mismatch: %s(%d) vs %s(%d)", q.Code, q.Precision, other.Code, other.Precision)
	}
	return WeightQuantity{Amount: q.Amount - other.Amount, Code: q.Code, Precision: q.Precision}, nil
}

func (q WeightQuantity) IsZero() bool {
	return q.Amount == 0
}

func (q WeightQuantity) IsNegative() bool {
	return q.Amount < 0
}

func (q WeightQuantity) IsPositive() bool {
	return q.Amount > 0
}

// FloorZero clamps a negative amount to zero without touching positive values.
func (q WeightQuantity) FloorZero() WeightQuantity {
	if q.Amount < 0 {
		q.Amount = 0
	}
	return q
}

func (q WeightQuantity) String() string {
	unit := WholeUnit(q.Precision)
	whole := q.Amount / unit
	frac := q.Amount % unit
	if frac < 0 {
		frac = -frac
	}
	if q.Precision == 0 {
		return strconv.FormatInt(whole, 10) + " " + q.Code
	}
	return fmt.Sprintf("%d.%0*d %s", whole, q.Precision, frac, q.Code)
}
