package services

import (
	"fmt"
	"sort"
	"time"

	"waste-wizard-backend/internal/models"
)

// TimeRange selects the rolling window of a waste statistics query
type TimeRange string

const (
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeAll   TimeRange = "all"
)

// ParseTimeRange accepts week, month or all; empty means week
func ParseTimeRange(s string) (TimeRange, error) {
	switch TimeRange(s) {
	case "":
		return RangeWeek, nil
	case RangeWeek, RangeMonth, RangeAll:
		return TimeRange(s), nil
	default:
		return "", fmt.Errorf("invalid timeRange %q (expected week, month or all)", s)
	}
}

// Since returns the inclusive lower bound relative to now, or nil for all
func (r TimeRange) Since(now time.Time) *time.Time {
	var since time.Time
	switch r {
	case RangeWeek:
		since = now.Add(-7 * 24 * time.Hour)
	case RangeMonth:
		since = now.Add(-30 * 24 * time.Hour)
	default:
		return nil
	}
	return &since
}

// SummarizeWasteItems aggregates items by waste type, bin and UTC day
func SummarizeWasteItems(items []models.WasteItem, rng TimeRange, trashcan int) models.WasteSummary {
	summary := models.WasteSummary{
		TimeRange:    string(rng),
		Trashcan:     trashcan,
		Total:        len(items),
		ByWasteType:  map[string]int{},
		ByBin:        map[int]int{},
		Daily:        []models.DailyCount{},
		ByDayAndType: []models.DailyTypeCounts{},
	}

	daily := map[string]int{}
	dailyByType := map[string]map[string]int{}

	for _, item := range items {
		summary.ByWasteType[item.WasteType]++
		summary.ByBin[item.BinNumber]++

		date := item.Time.UTC().Format("2006-01-02")
		daily[date]++
		if dailyByType[date] == nil {
			dailyByType[date] = map[string]int{}
		}
		dailyByType[date][item.WasteType]++
	}

	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		summary.Daily = append(summary.Daily, models.DailyCount{Date: date, Count: daily[date]})
		summary.ByDayAndType = append(summary.ByDayAndType, models.DailyTypeCounts{Date: date, Counts: dailyByType[date]})
	}

	return summary
}
