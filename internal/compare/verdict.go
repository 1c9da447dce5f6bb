package compare

import (
	"fmt"
	"strconv"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

// Aggregate tallies the winner of every compared metric. The overall
// winner needs strictly more wins; equal counts give model.TieLabel. Tied
// metrics still count toward wins but only clear outcomes produce a
// strength for the winner and a matching weakness for the loser. A company
// compared with itself is always a tie.
func Aggregate(res *model.ComparisonResult, a, b Side) model.Verdict {
	v := model.Verdict{
		Wins:       map[string]int{a.ID: 0, b.ID: 0},
		Strengths:  []model.Highlight{},
		Weaknesses: []model.Highlight{},
	}
	if a.ID == b.ID {
		v.Winner, v.WinnerName = model.TieLabel, model.TieLabel
		return v
	}

	sets := []struct {
		metrics []Metric
		results map[string]model.MetricComparison
	}{
		{FinancialMetrics, res.FinancialComparison},
		{CustomerMetrics, res.UserMetricsComparison},
		{ProductMetrics, res.ProductComparison},
	}
	for _, s := range sets {
		for _, m := range s.metrics {
			mc, ok := s.results[m.Key]
			if !ok || mc.Better == "" {
				continue
			}
			v.Wins[mc.Better]++

			winner, loser := a, b
			if mc.Better == b.ID {
				winner, loser = b, a
			}
			strength, weakness, clear := describe(m, mc)
			if !clear {
				continue
			}
			v.Strengths = append(v.Strengths, highlight(winner, m, strength, mc.DifferencePercent))
			v.Weaknesses = append(v.Weaknesses, highlight(loser, m, weakness, mc.DifferencePercent))
		}
	}

	switch wa, wb := v.Wins[a.ID], v.Wins[b.ID]; {
	case wa > wb:
		v.Winner, v.WinnerName = a.ID, a.Name
	case wb > wa:
		v.Winner, v.WinnerName = b.ID, b.Name
	default:
		v.Winner, v.WinnerName = model.TieLabel, model.TieLabel
	}
	return v
}

func highlight(s Side, m Metric, text string, magnitude float64) model.Highlight {
	return model.Highlight{
		Company:     s.ID,
		CompanyName: s.Name,
		Metric:      m.Key,
		Area:        m.Area,
		Description: text,
		Magnitude:   magnitude,
	}
}

// describe words the outcome of one metric from both sides.
func describe(m Metric, mc model.MetricComparison) (strength, weakness string, clear bool) {
	switch mc.Rule {
	case model.RuleDirect:
		win, lose := "Higher", "Lower"
		if m.LowerBetter {
			win, lose = lose, win
		}
		by := strconv.FormatFloat(Round(mc.DifferencePercent, 1), 'f', -1, 64)
		return fmt.Sprintf("%s %s by %s%%", win, m.Phrase, by),
			fmt.Sprintf("%s %s by %s%%", lose, m.Phrase, by), true
	case model.RuleOneMissing:
		return fmt.Sprintf("Reported %s", m.Phrase),
			fmt.Sprintf("No %s data", m.Phrase), true
	case model.RuleSignMismatch:
		return fmt.Sprintf("Positive %s", m.Phrase),
			fmt.Sprintf("Negative %s", m.Phrase), true
	}
	return "", "", false
}
