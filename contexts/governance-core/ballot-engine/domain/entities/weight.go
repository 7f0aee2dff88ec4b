package entities

// Weight is a tally amount in a weighting currency. The ballot engine never
// does cross-currency arithmetic: a ballot is bound to one (code, precision)
// pair at registration and every weight flowing through it shares that pair.
type Weight struct {
	Amount    int64
	Code      string
	Precision uint8
}

func NewWeight(amount int64, code string, precision uint8) Weight {
	return Weight{Amount: amount, Code: code, Precision: precision}
}

func ZeroWeight(code string, precision uint8) Weight {
	return Weight{Code: code, Precision: precision}
}

func (w Weight) IsPositive() bool {
	return w.Amount > 0
}
