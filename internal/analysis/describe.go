package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/popstat-cli/internal/table"
)

// DescriptiveStats summarizes one numeric column.
type DescriptiveStats struct {
	Count  int
	Mean   float64
	Median float64
	Std    float64
	Min    float64
	Max    float64
}

// Range is Max minus Min.
func (s DescriptiveStats) Range() float64 {
	return s.Max - s.Min
}

// Describe computes per-column statistics for every numeric column. A
// column is numeric when it holds at least one number and no strings;
// missing and undefined cells are ignored. Std is the sample standard
// deviation and is 0 below two observations.
func Describe(t *table.Table) map[string]DescriptiveStats {
	out := make(map[string]DescriptiveStats)
	for _, col := range t.Columns() {
		nums := make([]float64, 0, t.NumRows())
		strings := 0
		for i := 0; i < t.NumRows(); i++ {
			v := t.Value(i, col)
			if v.IsNull() || v.IsUndefined() {
				continue
			}
			if n, ok := v.Number(); ok {
				nums = append(nums, n)
			} else {
				strings++
			}
		}
		if len(nums) == 0 || strings > 0 {
			continue
		}
		out[col] = describeValues(nums)
	}
	return out
}

func describeValues(nums []float64) DescriptiveStats {
	var mean, m2 float64
	min := math.Inf(1)
	max := math.Inf(-1)
	for i, x := range nums {
		d := x - mean
		mean += d / float64(i+1)
		m2 += d * (x - mean)
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	return DescriptiveStats{
		Count:  len(nums),
		Mean:   mean,
		Median: quantile(sorted, 0.5),
		Std:    sampleStd(m2, len(nums)),
		Min:    min,
		Max:    max,
	}
}

// quantile interpolates linearly between the two nearest ranks of an
// ascending-sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func sampleStd(m2 float64, n int) float64 {
	if n < 2 {
		return 0
	}
	return math.Sqrt(m2 / float64(n-1))
}
