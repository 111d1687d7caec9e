package grading

// PointsFraction maps a 0-100 similarity score to the fraction of the
// question's max points awarded. The curve is piecewise linear,
// continuous in value at every boundary, and deliberately steeper in
// the upper bands so higher understanding is rewarded non-linearly:
//
//	90-100  -> 1.00
//	80-89   -> 0.85..0.99
//	70-79   -> 0.70..0.84
//	60-69   -> 0.60..0.69
//	40-59   -> 0.30..0.59
//	20-39   -> 0.10..0.29
//	 0-19   -> 0.00..0.09
//
// Input outside [0, 100] is clamped first.
func PointsFraction(similarity float64) float64 {
	sim := similarity
	if sim < 0 {
		sim = 0
	}
	if sim > 100 {
		sim = 100
	}

	switch {
	case sim >= 90:
		return 1.0
	case sim >= 80:
		return 0.85 + (sim-80)*0.015
	case sim >= 70:
		return 0.70 + (sim-70)*0.015
	case sim >= 60:
		return 0.60 + (sim-60)*0.01
	case sim >= 40:
		return 0.30 + (sim-40)*0.015
	case sim >= 20:
		return 0.10 + (sim-20)*0.01
	default:
		return sim * 0.005
	}
}

// PointsForSimilarity applies the curve to a question's max points,
// rounded to two decimals.
func PointsForSimilarity(similarity, maxPoints float64) float64 {
	return round2(maxPoints * PointsFraction(similarity))
}
