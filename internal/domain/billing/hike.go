package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/billing-dashboard/pkg/util"
)

// DetectHike compares the last record against the mean of the five before it.
// It reports false when fewer than HikeWindow records exist, when the latest
// amount does not strictly exceed the mean, or, with requireConsecutive set,
// when the six months are not contiguous calendar months.
func DetectHike(records []Record, requireConsecutive bool) (Hike, bool) {
	if len(records) < HikeWindow {
		return Hike{}, false
	}
	window := records[len(records)-HikeWindow:]
	if requireConsecutive && !consecutiveMonths(window) {
		return Hike{}, false
	}

	baseline := make([]float64, 0, HikeWindow-1)
	var sum float64
	for _, rec := range window[:HikeWindow-1] {
		baseline = append(baseline, rec.TotalAmount)
		sum += rec.TotalAmount
	}
	average := sum / float64(HikeWindow-1)
	current := window[HikeWindow-1]
	if current.TotalAmount <= average {
		return Hike{}, false
	}
	return Hike{
		Baseline:     baseline,
		Average:      average,
		Current:      current.TotalAmount,
		CurrentMonth: current.Month,
	}, true
}

// Prompt renders the user message sent to the analyst.
func (h Hike) Prompt() string {
	amounts := make([]string, 0, len(h.Baseline))
	for _, v := range h.Baseline {
		amounts = append(amounts, formatAmount(v))
	}
	return fmt.Sprintf(
		"Here are the past %d months' bills: %s, and the current month is %s. What could be the reason for the hike in the latest bill?",
		len(h.Baseline), strings.Join(amounts, ", "), formatAmount(h.Current),
	)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func consecutiveMonths(window []Record) bool {
	var prev time.Time
	for i, rec := range window {
		month, ok := util.ParseMonth(rec.Month)
		if !ok {
			return false
		}
		if i > 0 && !month.Equal(prev.AddDate(0, 1, 0)) {
			return false
		}
		prev = month
	}
	return true
}
