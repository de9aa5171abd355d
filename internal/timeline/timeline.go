// Package timeline implements the public timeline presentation logic:
// grouping events into year sections, ordering within a year, resolving
// year searches to the nearest populated year, and bucketing years into
// decades for the browse popover.
package timeline

import (
	"sort"
	"strconv"
	"strings"

	"github.com/stormarchive/timeline-service/internal/types"
)

type YearGroup struct {
	Year   int           `json:"year"`
	Events []types.Event `json:"events"`
}

var monthIndex = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
}

// extractYear takes the last digit run in a display date as its year.
// Years up to 4 digits are accepted ("July 14, 530" groups under 530);
// a longer run is not a year.
func extractYear(date string) (int, bool) {
	i := len(date) - 1
	for i >= 0 && (date[i] < '0' || date[i] > '9') {
		i--
	}
	if i < 0 {
		return 0, false
	}

	j := i
	for j >= 0 && date[j] >= '0' && date[j] <= '9' {
		j--
	}

	run := date[j+1 : i+1]
	if len(run) > 4 {
		return 0, false
	}

	year, err := strconv.Atoi(run)
	if err != nil {
		return 0, false
	}
	return year, true
}

// monthDayKey orders events within a year by parsed month name and day.
// Returns false for dates it cannot parse; those sort last.
func monthDayKey(date string) (int, bool) {
	fields := strings.Fields(strings.TrimSpace(date))
	if len(fields) < 2 {
		return 0, false
	}

	month, ok := monthIndex[strings.ToLower(fields[0])]
	if !ok {
		return 0, false
	}

	dayDigits := strings.TrimFunc(fields[1], func(r rune) bool {
		return r < '0' || r > '9'
	})
	day, err := strconv.Atoi(dayDigits)
	if err != nil || day < 1 || day > 31 {
		return 0, false
	}

	return month*100 + day, true
}

// Group buckets events by extracted year, years ascending numerically,
// events within a year ordered by month and day with unparseable dates
// last. Events with no recognizable year are not shown on the timeline.
func Group(events []types.Event) []YearGroup {
	byYear := map[int][]types.Event{}
	for _, ev := range events {
		year, ok := extractYear(ev.DisplayDate)
		if !ok {
			continue
		}
		byYear[year] = append(byYear[year], ev)
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	groups := make([]YearGroup, 0, len(years))
	for _, year := range years {
		group := YearGroup{Year: year, Events: byYear[year]}
		sort.SliceStable(group.Events, func(i, j int) bool {
			ki, oki := monthDayKey(group.Events[i].DisplayDate)
			kj, okj := monthDayKey(group.Events[j].DisplayDate)
			if oki != okj {
				return oki
			}
			return ki < kj
		})
		groups = append(groups, group)
	}

	return groups
}

// NearestYear resolves a queried year to the closest year that has
// events. Ties go to whichever year comes first in ascending order.
func NearestYear(years []int, query int) (int, bool) {
	if len(years) == 0 {
		return 0, false
	}

	sorted := append([]int(nil), years...)
	sort.Ints(sorted)

	best := sorted[0]
	bestDiff := abs(query - best)
	for _, year := range sorted[1:] {
		diff := abs(query - year)
		if diff < bestDiff {
			best = year
			bestDiff = diff
		}
	}

	return best, true
}

// ResolveSearch answers a year search: the target year to navigate to
// and whether it is a substitution for a year with no events.
func ResolveSearch(years []int, query int) (target int, substituted bool, ok bool) {
	for _, year := range years {
		if year == query {
			return query, false, true
		}
	}

	nearest, ok := NearestYear(years, query)
	if !ok {
		return 0, false, false
	}
	return nearest, true, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Decade is one bucket of the browse popover.
type Decade struct {
	Start int   `json:"start"`
	Years []int `json:"years"`
}

// Decades buckets the populated years by decade (year floored to the
// nearest 10), both levels ascending.
func Decades(years []int) []Decade {
	byDecade := map[int][]int{}
	for _, year := range years {
		start := year / 10 * 10
		byDecade[start] = append(byDecade[start], year)
	}

	starts := make([]int, 0, len(byDecade))
	for start := range byDecade {
		starts = append(starts, start)
	}
	sort.Ints(starts)

	decades := make([]Decade, 0, len(starts))
	for _, start := range starts {
		list := byDecade[start]
		sort.Ints(list)
		decades = append(decades, Decade{Start: start, Years: list})
	}

	return decades
}
