package domain

// FeePolicy computes the fee charged on top of a withdrawal amount. Policies
// are pure: the same amount always yields the same fee, and computing a fee
// never mutates account state.
type FeePolicy interface {
	ComputeFee(amount float64) float64
}

// NoFeePolicy charges nothing. It is the default policy of every account.
type NoFeePolicy struct{}

func (NoFeePolicy) ComputeFee(amount float64) float64 { return 0 }

// FixedFeePolicy charges a constant fee per withdrawal.
type FixedFeePolicy struct {
	fee float64
}

func NewFixedFeePolicy(fee float64) FixedFeePolicy {
	return FixedFeePolicy{fee: fee}
}

func (p FixedFeePolicy) ComputeFee(amount float64) float64 { return p.fee }

// PercentageFeePolicy charges a fraction of the withdrawal amount.
type PercentageFeePolicy struct {
	rate float64
}

func NewPercentageFeePolicy(rate float64) PercentageFeePolicy {
	return PercentageFeePolicy{rate: rate}
}

func (p PercentageFeePolicy) ComputeFee(amount float64) float64 { return amount * p.rate }
