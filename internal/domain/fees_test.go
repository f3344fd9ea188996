package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeePolicies(t *testing.T) {
	t.Run("no fee", func(t *testing.T) {
		assert.Equal(t, 0.0, NoFeePolicy{}.ComputeFee(1000))
	})

	t.Run("fixed fee", func(t *testing.T) {
		p := NewFixedFeePolicy(2.5)
		assert.Equal(t, 2.5, p.ComputeFee(10))
		assert.Equal(t, 2.5, p.ComputeFee(10000))
	})

	t.Run("percentage fee", func(t *testing.T) {
		p := NewPercentageFeePolicy(0.25)
		assert.Equal(t, 25.0, p.ComputeFee(100))
		assert.Equal(t, 0.0, p.ComputeFee(0))
	})
}

func TestAccountDefaultsToNoFee(t *testing.T) {
	acc := NewSavingsAccount("SA-200", 100.0, 0.01, nil)
	assert.IsType(t, NoFeePolicy{}, acc.FeePolicy())

	acc.SetFeePolicy(nil)
	assert.IsType(t, NoFeePolicy{}, acc.FeePolicy(), "nil resets to the zero-fee policy")
}
