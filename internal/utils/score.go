package utils

// ScoreComparison is the result of checking an actual custom format score
// against the acceptable band around an expected score.
type ScoreComparison struct {
	Expected   int
	Actual     int
	Difference int // Actual - Expected; negative means the import under-delivered
	MinAllowed int
	MaxAllowed int
	Acceptable bool
}

// CompareScores checks whether actual falls within the inclusive band
// [expected-maxUnder, expected+maxOver]. Boundary values are acceptable.
func CompareScores(expected, actual, maxOver, maxUnder int) ScoreComparison {
	minAllowed := expected - maxUnder
	maxAllowed := expected + maxOver

	return ScoreComparison{
		Expected:   expected,
		Actual:     actual,
		Difference: actual - expected,
		MinAllowed: minAllowed,
		MaxAllowed: maxAllowed,
		Acceptable: actual >= minAllowed && actual <= maxAllowed,
	}
}
