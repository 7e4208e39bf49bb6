// Package schedule fires a callback on a recurring calendar rule, the way
// the monthly report reminder is triggered. Nothing is persisted: the next
// fire time is always recomputed from the rule, so restarts are safe.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Rule is a cron-like calendar trigger: fire at Hour:Minute in Location on
// any matching day. Empty Days means every day of the month; empty Weekdays
// means every weekday. Both constraints must match when both are set.
type Rule struct {
	Days     []int
	Weekdays []time.Weekday
	Hour     int
	Minute   int
	Location *time.Location
}

// ParseDays parses a day-of-month spec: "5", "1,15", "1-10" or combinations
// like "1-5,20". Empty means every day.
func ParseDays(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	seen := make(map[int]bool)
	var days []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		lo, hi, err := parseDayRange(part)
		if err != nil {
			return nil, err
		}
		for d := lo; d <= hi; d++ {
			if !seen[d] {
				seen[d] = true
				days = append(days, d)
			}
		}
	}
	sort.Ints(days)
	return days, nil
}

func parseDayRange(part string) (int, int, error) {
	if lo, hi, ok := strings.Cut(part, "-"); ok {
		from, err := parseDay(lo)
		if err != nil {
			return 0, 0, err
		}
		to, err := parseDay(hi)
		if err != nil {
			return 0, 0, err
		}
		if from > to {
			return 0, 0, fmt.Errorf("invalid day range %q", part)
		}
		return from, to, nil
	}
	d, err := parseDay(part)
	return d, d, err
}

func parseDay(s string) (int, error) {
	d, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || d < 1 || d > 31 {
		return 0, fmt.Errorf("invalid day of month %q", s)
	}
	return d, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
	"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWeekdays parses a weekday spec like "mon,fri". Empty means every day.
func ParseWeekdays(spec string) ([]time.Weekday, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	var out []time.Weekday
	for _, part := range strings.Split(spec, ",") {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		out = append(out, wd)
	}
	return out, nil
}

// NewRule validates and assembles a rule.
func NewRule(days []int, weekdays []time.Weekday, hour, minute int, loc *time.Location) (Rule, error) {
	if hour < 0 || hour > 23 {
		return Rule{}, fmt.Errorf("invalid hour %d", hour)
	}
	if minute < 0 || minute > 59 {
		return Rule{}, fmt.Errorf("invalid minute %d", minute)
	}
	if loc == nil {
		loc = time.UTC
	}
	return Rule{Days: days, Weekdays: weekdays, Hour: hour, Minute: minute, Location: loc}, nil
}

// Next returns the first fire time strictly after the given instant.
func (r Rule) Next(after time.Time) time.Time {
	t := after.In(r.Location)
	// Scanning day by day keeps DST transitions correct: time.Date
	// resolves the wall clock within each day's actual offset.
	for i := 0; i < 732; i++ {
		day := t.AddDate(0, 0, i)
		candidate := time.Date(day.Year(), day.Month(), day.Day(), r.Hour, r.Minute, 0, 0, r.Location)
		if candidate.After(t) && r.matches(candidate) {
			return candidate
		}
	}
	// Unreachable: any valid rule matches within two years.
	return time.Time{}
}

func (r Rule) matches(t time.Time) bool {
	if len(r.Days) > 0 && !containsInt(r.Days, t.Day()) {
		return false
	}
	if len(r.Weekdays) > 0 && !containsWeekday(r.Weekdays, t.Weekday()) {
		return false
	}
	return true
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func containsWeekday(xs []time.Weekday, x time.Weekday) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
