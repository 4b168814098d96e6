package services

import (
	"context"
	"sort"
)

type AnalyticsTier struct {
	Tier  Tier   `json:"tier"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type AnalyticsTimeseries struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AnalyticsSummary struct {
	TotalAssessments int                   `json:"total_assessments"`
	MeanScore        float64               `json:"mean_score"`
	Histogram        []int                 `json:"histogram"` // index = score, 0..GaugeMax
	Tiers            []AnalyticsTier       `json:"tiers"`
	Timeseries       []AnalyticsTimeseries `json:"timeseries"`
}

// Summary aggregates every stored assessment.
func (s *AssessmentService) Summary(ctx context.Context, locale string) (*AnalyticsSummary, error) {
	if s.store == nil {
		return nil, NewUnavailableError("assessment store not configured")
	}
	list, err := s.store.ListAssessments(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(list, locale), nil
}

func summarize(list []*Assessment, locale string) *AnalyticsSummary {
	out := &AnalyticsSummary{
		TotalAssessments: len(list),
		Histogram:        make([]int, GaugeMax+1),
	}
	tierCounts := make([]int, int(TierVeryHigh)+1)
	countsByDay := map[string]int{}
	sum := 0
	for _, a := range list {
		score := a.Result.Score
		sum += score
		if score >= 0 && score <= GaugeMax {
			out.Histogram[score]++
		}
		tierCounts[TierForScore(score)]++
		countsByDay[a.SubmittedAt.UTC().Format("2006-01-02")]++
	}
	if len(list) > 0 {
		out.MeanScore = float64(sum) / float64(len(list))
	}
	for t := TierLow; t <= TierVeryHigh; t++ {
		out.Tiers = append(out.Tiers, AnalyticsTier{Tier: t, Label: t.Label(locale), Count: tierCounts[t]})
	}
	out.Timeseries = buildTimeseries(countsByDay)
	return out
}

func buildTimeseries(counts map[string]int) []AnalyticsTimeseries {
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]AnalyticsTimeseries, 0, len(days))
	for _, d := range days {
		out = append(out, AnalyticsTimeseries{Date: d, Count: counts[d]})
	}
	return out
}
