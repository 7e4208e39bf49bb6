package schedule

import (
	"reflect"
	"testing"
	"time"
)

func TestParseDays(t *testing.T) {
	cases := []struct {
		in   string
		want []int
		ok   bool
	}{
		{"", nil, true},
		{"5", []int{5}, true},
		{"1,15", []int{1, 15}, true},
		{"1-4", []int{1, 2, 3, 4}, true},
		{"1-3,20", []int{1, 2, 3, 20}, true},
		{"3,1-2", []int{1, 2, 3}, true},
		{"0", nil, false},
		{"32", nil, false},
		{"10-5", nil, false},
		{"abc", nil, false},
	}
	for _, tc := range cases {
		got, err := ParseDays(tc.in)
		if tc.ok {
			if err != nil || !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseDays(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
			}
		} else if err == nil {
			t.Fatalf("ParseDays(%q) expected error", tc.in)
		}
	}
}

func TestParseWeekdays(t *testing.T) {
	got, err := ParseWeekdays("mon,FRI")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []time.Weekday{time.Monday, time.Friday}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if _, err := ParseWeekdays("monday"); err == nil {
		t.Fatalf("expected error for unknown name")
	}
}

func mustRule(t *testing.T, days []int, weekdays []time.Weekday, hour, minute int, loc *time.Location) Rule {
	t.Helper()
	r, err := NewRule(days, weekdays, hour, minute, loc)
	if err != nil {
		t.Fatalf("rule: %v", err)
	}
	return r
}

func TestNextSameDay(t *testing.T) {
	r := mustRule(t, []int{5}, nil, 9, 0, time.UTC)
	after := time.Date(2025, 8, 5, 8, 0, 0, 0, time.UTC)
	want := time.Date(2025, 8, 5, 9, 0, 0, 0, time.UTC)
	if got := r.Next(after); !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}
}

func TestNextRollsToNextMonth(t *testing.T) {
	r := mustRule(t, []int{5}, nil, 9, 0, time.UTC)
	after := time.Date(2025, 8, 5, 9, 0, 0, 0, time.UTC) // exactly at fire time
	want := time.Date(2025, 9, 5, 9, 0, 0, 0, time.UTC)
	if got := r.Next(after); !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}
}

func TestNextDayRange(t *testing.T) {
	r := mustRule(t, []int{1, 2, 3}, nil, 8, 0, time.UTC)
	after := time.Date(2025, 8, 1, 8, 30, 0, 0, time.UTC)
	want := time.Date(2025, 8, 2, 8, 0, 0, 0, time.UTC)
	if got := r.Next(after); !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}
}

func TestNextWeekdayOnly(t *testing.T) {
	r := mustRule(t, nil, []time.Weekday{time.Monday}, 7, 30, time.UTC)
	after := time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC) // Friday
	want := time.Date(2025, 9, 1, 7, 30, 0, 0, time.UTC)   // next Monday
	if got := r.Next(after); !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}
}

func TestNextDayAndWeekdayMustBothMatch(t *testing.T) {
	// Day 1 of month that is also a Monday: Sep 1 2025.
	r := mustRule(t, []int{1}, []time.Weekday{time.Monday}, 9, 0, time.UTC)
	after := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	want := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	if got := r.Next(after); !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}
}

func TestNextUsesRuleTimezone(t *testing.T) {
	sp, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	r := mustRule(t, []int{5}, nil, 9, 0, sp)
	// 11:00 UTC on Aug 5 is 08:00 in São Paulo (UTC-3): same-day fire.
	after := time.Date(2025, 8, 5, 11, 0, 0, 0, time.UTC)
	got := r.Next(after)
	want := time.Date(2025, 8, 5, 9, 0, 0, 0, sp)
	if !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}
}

func TestNextSkipsDay31InShortMonths(t *testing.T) {
	r := mustRule(t, []int{31}, nil, 9, 0, time.UTC)
	after := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC) // September has 30 days
	want := time.Date(2025, 10, 31, 9, 0, 0, 0, time.UTC)
	if got := r.Next(after); !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}
}

func TestNewRuleValidation(t *testing.T) {
	if _, err := NewRule(nil, nil, 24, 0, time.UTC); err == nil {
		t.Fatalf("expected error for hour 24")
	}
	if _, err := NewRule(nil, nil, 9, 60, time.UTC); err == nil {
		t.Fatalf("expected error for minute 60")
	}
	r, err := NewRule(nil, nil, 9, 0, nil)
	if err != nil {
		t.Fatalf("rule: %v", err)
	}
	if r.Location != time.UTC {
		t.Fatalf("nil location should default to UTC")
	}
}
