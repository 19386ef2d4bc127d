package services

import (
	"sort"
	"strings"
	"time"

	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/models"
)

// Filters are the optional list/export criteria. Every field that is set
// must match for a record to pass (logical AND).
type Filters struct {
	// Status is a comma-separated list; unknown statuses are dropped.
	Status   string
	City     string
	Source   string
	Query    string
	DateFrom string
	DateTo   string
}

func parseStatuses(raw string) []string {
	if raw == "" {
		return nil
	}
	var statuses []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if models.ValidStatus(part) {
			statuses = append(statuses, part)
		}
	}
	return statuses
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}

// FilterApplications applies the criteria in memory and returns the result
// newest-first. Unparseable date bounds are ignored; a record whose own
// created_at does not parse is never excluded by the date range.
func FilterApplications(applications []models.Application, filters Filters) []models.Application {
	statuses := parseStatuses(filters.Status)
	city := strings.ToLower(strings.TrimSpace(filters.City))
	source := strings.ToLower(strings.TrimSpace(filters.Source))
	query := strings.ToLower(strings.TrimSpace(filters.Query))
	queryDigits := NormalizePhone(query)

	dateFrom, hasFrom := parseTimestamp(filters.DateFrom)
	dateTo, hasTo := parseTimestamp(filters.DateTo)
	if hasTo {
		dateTo = endOfDay(dateTo)
	}

	list := make([]models.Application, 0, len(applications))
	for _, item := range applications {
		if len(statuses) > 0 && !containsString(statuses, item.Status) {
			continue
		}
		if city != "" && !strings.Contains(strings.ToLower(item.City), city) {
			continue
		}
		if source != "" && !strings.Contains(strings.ToLower(item.SourceUTM.UTMSource), source) {
			continue
		}
		if query != "" {
			name := strings.ToLower(item.FullName)
			phone := strings.ToLower(item.Phone)
			digitsMatch := queryDigits != "" && strings.Contains(item.NormalizedPhone, queryDigits)
			if !strings.Contains(name, query) && !strings.Contains(phone, query) && !digitsMatch {
				continue
			}
		}
		if hasFrom || hasTo {
			if created, ok := parseTimestamp(item.CreatedAt); ok {
				if hasFrom && created.Before(dateFrom) {
					continue
				}
				if hasTo && created.After(dateTo) {
					continue
				}
			}
		}
		list = append(list, item)
	}

	// ISO timestamps sort lexicographically; ties keep encounter order.
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt > list[j].CreatedAt
	})
	return list
}

// BuildCounters tallies the four statuses surfaced in the admin header,
// computed over whatever set the caller passes (usually the filtered one).
func BuildCounters(applications []models.Application) models.Counters {
	var counters models.Counters
	for _, item := range applications {
		switch item.Status {
		case models.StatusNew:
			counters.New++
		case models.StatusContacted:
			counters.Contacted++
		case models.StatusApproved:
			counters.Approved++
		case models.StatusRejected:
			counters.Rejected++
		}
	}
	return counters
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
