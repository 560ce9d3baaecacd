package export

import (
	"math"
	"sort"
)

// Trend labels the direction of scores across a batch in processing order.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// trendSlopeThreshold is the minimum per-sheet percentage slope treated as
// a real direction rather than noise.
const trendSlopeThreshold = 0.5

// Bucket is one score-distribution band.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SubjectAverage is the mean subtotal percentage of one subject across the
// batch.
type SubjectAverage struct {
	Name    string  `json:"name"`
	Average float64 `json:"average"`
}

// BatchReport aggregates score statistics across a batch of sheets.
type BatchReport struct {
	Sheets       int              `json:"sheets"`
	Mean         float64          `json:"mean"`
	Median       float64          `json:"median"`
	StdDev       float64          `json:"std_dev"`
	Highest      float64          `json:"highest"`
	Lowest       float64          `json:"lowest"`
	Distribution []Bucket         `json:"distribution"`
	Trend        Trend            `json:"trend"`
	Subjects     []SubjectAverage `json:"subjects,omitempty"`
}

// NewBatchReport computes aggregate statistics over the entries. Entries
// are taken in slice order for the trend estimate. Returns an empty report
// for an empty batch.
func NewBatchReport(entries []Entry) *BatchReport {
	report := &BatchReport{
		Sheets:       len(entries),
		Trend:        TrendStable,
		Distribution: emptyDistribution(),
	}
	if len(entries) == 0 {
		return report
	}

	scores := make([]float64, len(entries))
	for i, e := range entries {
		scores[i] = e.Report.Percentage
	}

	report.Mean = mean(scores)
	report.Median = median(scores)
	report.StdDev = stdDev(scores, report.Mean)

	report.Highest = scores[0]
	report.Lowest = scores[0]
	for _, s := range scores[1:] {
		report.Highest = math.Max(report.Highest, s)
		report.Lowest = math.Min(report.Lowest, s)
	}

	for _, s := range scores {
		report.Distribution[bucketIndex(s)].Count++
	}
	report.Trend = trend(scores)
	report.Subjects = subjectAverages(entries)

	return report
}

func emptyDistribution() []Bucket {
	return []Bucket{
		{Label: "90-100"},
		{Label: "80-89"},
		{Label: "70-79"},
		{Label: "60-69"},
		{Label: "50-59"},
		{Label: "below 50"},
	}
}

func bucketIndex(score float64) int {
	switch {
	case score >= 90:
		return 0
	case score >= 80:
		return 1
	case score >= 70:
		return 2
	case score >= 60:
		return 3
	case score >= 50:
		return 4
	default:
		return 5
	}
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// trend fits a least-squares line through the scores in order and maps the
// slope to a direction label.
func trend(scores []float64) Trend {
	n := len(scores)
	if n < 2 {
		return TrendStable
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range scores {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return TrendStable
	}
	slope := (fn*sumXY - sumX*sumY) / denom

	switch {
	case slope > trendSlopeThreshold:
		return TrendImproving
	case slope < -trendSlopeThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// subjectAverages averages subject subtotals by name, in first-seen order.
func subjectAverages(entries []Entry) []SubjectAverage {
	var order []string
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, e := range entries {
		for _, s := range e.Report.Subjects {
			if _, seen := counts[s.Name]; !seen {
				order = append(order, s.Name)
			}
			sums[s.Name] += s.Percentage
			counts[s.Name]++
		}
	}

	averages := make([]SubjectAverage, 0, len(order))
	for _, name := range order {
		averages = append(averages, SubjectAverage{
			Name:    name,
			Average: sums[name] / float64(counts[name]),
		})
	}
	return averages
}
