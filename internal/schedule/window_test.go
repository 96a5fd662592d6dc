package schedule

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func str(s string) *string { return &s }

func TestEvaluateMissingFieldsAreUnscheduled(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name         string
		scheduleDate *time.Time
		start, end   *string
	}{
		{"all nil", nil, nil, nil},
		{"no date", nil, str("09:00"), str("10:00")},
		{"no start", date(2024, time.March, 10), nil, str("10:00")},
		{"no end", date(2024, time.March, 10), str("09:00"), nil},
		{"empty start", date(2024, time.March, 10), str(""), str("10:00")},
		{"malformed start", date(2024, time.March, 10), str("9am"), str("10:00")},
		{"malformed end", date(2024, time.March, 10), str("09:00"), str("25:99")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.scheduleDate, tc.start, tc.end, now); got != StatusUnscheduled {
				t.Fatalf("Evaluate() = %q, want %q", got, StatusUnscheduled)
			}
		})
	}
}

func TestEvaluateSameDayWindow(t *testing.T) {
	d := date(2024, time.March, 10)
	start, end := str("09:00"), str("11:00")

	cases := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"before start", time.Date(2024, time.March, 10, 8, 59, 0, 0, time.UTC), StatusUpcoming},
		{"at start", time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC), StatusActive},
		{"inside", time.Date(2024, time.March, 10, 10, 30, 0, 0, time.UTC), StatusActive},
		{"at end", time.Date(2024, time.March, 10, 11, 0, 0, 0, time.UTC), StatusExpired},
		{"after end", time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), StatusExpired},
		{"previous day", time.Date(2024, time.March, 9, 10, 0, 0, 0, time.UTC), StatusUpcoming},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(d, start, end, tc.now); got != tc.want {
				t.Fatalf("Evaluate(%s) = %q, want %q", tc.now, got, tc.want)
			}
		})
	}
}

func TestEvaluateCrossMidnightWindow(t *testing.T) {
	// 2024-03-10 22:00 .. 2024-03-11 02:00
	d := date(2024, time.March, 10)
	start, end := str("22:00"), str("02:00")

	cases := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"evening before", time.Date(2024, time.March, 10, 21, 0, 0, 0, time.UTC), StatusUpcoming},
		{"at start", time.Date(2024, time.March, 10, 22, 0, 0, 0, time.UTC), StatusActive},
		{"before midnight", time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC), StatusActive},
		{"after midnight", time.Date(2024, time.March, 11, 1, 0, 0, 0, time.UTC), StatusActive},
		{"past end", time.Date(2024, time.March, 11, 3, 0, 0, 0, time.UTC), StatusExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(d, start, end, tc.now); got != tc.want {
				t.Fatalf("Evaluate(%s) = %q, want %q", tc.now, got, tc.want)
			}
		})
	}
}

func TestEvaluateZeroLengthWindowSpansFullDay(t *testing.T) {
	// end == start is treated as crossing midnight, so the window runs a
	// full 24 hours rather than being empty.
	d := date(2024, time.March, 10)
	noon := time.Date(2024, time.March, 10, 18, 0, 0, 0, time.UTC)
	if got := Evaluate(d, str("08:00"), str("08:00"), noon); got != StatusActive {
		t.Fatalf("Evaluate() = %q, want %q", got, StatusActive)
	}
}

func TestEvaluateMonotonicInNow(t *testing.T) {
	d := date(2024, time.June, 1)
	start, end := str("23:30"), str("01:15")

	rank := map[Status]int{StatusUpcoming: 0, StatusActive: 1, StatusExpired: 2}

	prev := -1
	from := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 48*60; i += 7 { // step through two days
		now := from.Add(time.Duration(i) * time.Minute)
		got := Evaluate(d, start, end, now)
		r, ok := rank[got]
		if !ok {
			t.Fatalf("unexpected status %q at %s", got, now)
		}
		if r < prev {
			t.Fatalf("status regressed to %q at %s", got, now)
		}
		prev = r
	}
}

func TestBoundsCrossMidnightDuration(t *testing.T) {
	start, end, err := Bounds(
		time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		"22:00", "02:00", time.UTC,
	)
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(time.Date(2024, time.March, 10, 22, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %s", start)
	}
	if !end.Equal(time.Date(2024, time.March, 11, 2, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %s", end)
	}
	if d := end.Sub(start); d != 4*time.Hour {
		t.Fatalf("window length = %s, want 4h", d)
	}
}

func TestBoundsRejectsMalformedClock(t *testing.T) {
	if _, _, err := Bounds(time.Now(), "22:00", "2 AM", time.UTC); err == nil {
		t.Fatal("expected error for malformed end time")
	}
}

func TestClockImplementations(t *testing.T) {
	at := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	if got := (FixedClock{At: at}).Now(); !got.Equal(at) {
		t.Fatalf("FixedClock.Now() = %s, want %s", got, at)
	}
	if d := time.Since((RealClock{}).Now()); d < 0 || d > time.Minute {
		t.Fatalf("RealClock.Now() drifted by %s", d)
	}
}
