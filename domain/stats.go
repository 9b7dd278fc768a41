// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package domain

import "sort"

// Statistics are the aggregates computed over a session's estimates.
type Statistics struct {
	Average float64
	Median  float64
	Min     float64
	Max     float64
	Count   int
}

// CalculateStatistics computes average, median, min, max, and count over the
// given estimates. An empty input yields all zeros - a round with no
// submissions is a valid, displayable state, not an error.
//
// Zero-valued ("not yet submitted") estimates are included. Callers wanting
// submitted-only semantics must pre-filter with SubmittedOnly; the service
// itself never filters implicitly.
func CalculateStatistics(estimates []Estimate) Statistics {
	if len(estimates) == 0 {
		return Statistics{}
	}

	values := make([]float64, len(estimates))
	sum := 0.0
	min := estimates[0].Value
	max := estimates[0].Value
	for i, e := range estimates {
		values[i] = e.Value
		sum += e.Value
		if e.Value < min {
			min = e.Value
		}
		if e.Value > max {
			max = e.Value
		}
	}

	sort.Float64s(values)

	return Statistics{
		Average: sum / float64(len(values)),
		Median:  median(values),
		Min:     min,
		Max:     max,
		Count:   len(values),
	}
}

// SubmittedOnly filters out zero-valued estimates, leaving only those where
// the participant actually picked a number.
func SubmittedOnly(estimates []Estimate) []Estimate {
	submitted := make([]Estimate, 0, len(estimates))
	for _, e := range estimates {
		if e.Value > 0 {
			submitted = append(submitted, e)
		}
	}
	return submitted
}

// median expects sorted input. Odd count takes the middle element; even count
// averages the two middle elements.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0.0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}
