package domain

type Complexity string

const (
	ComplexityLow    Complexity = "Low"
	ComplexityMedium Complexity = "Medium"
	ComplexityHigh   Complexity = "High"
)

const (
	highRaiseThreshold   = 5_000_000
	mediumRaiseThreshold = 1_000_000
)

// ComplexityScore classifies a project. Class-based checks run before the
// amount-based ones, so Funds with a tiny raise is still High.
func ComplexityScore(assetClass string, targetRaise float64) Complexity {
	switch {
	case assetClass == "Funds" || assetClass == "Business":
		return ComplexityHigh
	case targetRaise > highRaiseThreshold:
		return ComplexityHigh
	case targetRaise > mediumRaiseThreshold || assetClass == "Debt":
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}
