package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BaseMarketRate is the yield, in percent, offered with no lock-up.
const BaseMarketRate = 4.5

var lockupPremiumPerMonth = decimal.NewFromFloat(0.25)

// DynamicYield suggests an annual yield for a lock-up period, rounded to cents.
func DynamicYield(lockupMonths int) float64 {
	if lockupMonths < 0 {
		lockupMonths = 0
	}
	y := decimal.NewFromFloat(BaseMarketRate).
		Add(lockupPremiumPerMonth.Mul(decimal.NewFromInt(int64(lockupMonths))))
	return y.Round(2).InexactFloat64()
}

// TotalRaise is the market cap of the token issue; 0 when price or supply is unset.
func TotalRaise(p Property) float64 {
	if p.TotalTokens <= 0 || p.TokenPrice <= 0 {
		return 0
	}
	return decimal.NewFromFloat(p.TotalTokens).
		Mul(decimal.NewFromFloat(p.TokenPrice)).
		Round(2).InexactFloat64()
}

// CoverageRatio is asset value over raise in percent, 0 unless both are set.
func CoverageRatio(p Property) float64 {
	raise := TotalRaise(p)
	if p.TotalValue == 0 || raise == 0 {
		return 0
	}
	return decimal.NewFromFloat(p.TotalValue).
		Div(decimal.NewFromFloat(raise)).
		Mul(decimal.NewFromInt(100)).
		Round(2).InexactFloat64()
}

// Total returns the sum of all four shares.
func (a TokenAllocation) Total() float64 {
	return decimal.NewFromFloat(a.Founders).
		Add(decimal.NewFromFloat(a.Investors)).
		Add(decimal.NewFromFloat(a.Treasury)).
		Add(decimal.NewFromFloat(a.Advisors)).
		Round(4).InexactFloat64()
}

// Remaining is how many percentage points are left to allocate (negative when over).
func (a TokenAllocation) Remaining() float64 {
	return decimal.NewFromInt(100).Sub(decimal.NewFromFloat(a.Total())).Round(4).InexactFloat64()
}

// Validate checks the cap table: no negative share and a total of exactly 100.
func (a TokenAllocation) Validate() error {
	for name, v := range map[string]float64{
		"founders": a.Founders, "investors": a.Investors,
		"treasury": a.Treasury, "advisors": a.Advisors,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s is negative", ErrAllocationSum, name)
		}
	}
	if a.Remaining() != 0 {
		return fmt.Errorf("%w: got %v", ErrAllocationSum, a.Total())
	}
	return nil
}
