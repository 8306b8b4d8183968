package service

import "github.com/noah-isme/sikampus-api/pkg/config"

// FeeCalculator prices a registration from the module credit weight.
type FeeCalculator struct {
	rate int64
}

// NewFeeCalculator builds a calculator; non-positive rates fall back to the default.
func NewFeeCalculator(rate int64) *FeeCalculator {
	if rate <= 0 {
		rate = config.DefaultFeePerCredit
	}
	return &FeeCalculator{rate: rate}
}

// Rate returns the per-credit rate.
func (f *FeeCalculator) Rate() int64 {
	return f.rate
}

// Fee returns credits * rate.
func (f *FeeCalculator) Fee(credits int) int64 {
	return int64(credits) * f.rate
}
