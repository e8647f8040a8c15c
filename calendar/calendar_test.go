package calendar

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestKeyOf(t *testing.T) {
	tests := []struct {
		in   time.Time
		want DateKey
	}{
		{date(2024, 1, 1), "2024-01-01"},
		{time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), "2024-12-31"},
		{date(987, 3, 9), "0987-03-09"},
	}
	for _, tt := range tests {
		if got := KeyOf(tt.in); got != tt.want {
			t.Errorf("KeyOf(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestKeyOrderMatchesChronology(t *testing.T) {
	// 文字列比較と日付比較の順序が一致すること
	prev := KeyOf(date(2023, 12, 25))
	for day := date(2023, 12, 26); day.Before(date(2024, 3, 1)); day = AddDays(day, 1) {
		k := KeyOf(day)
		if !(prev < k) {
			t.Fatalf("Expected %s < %s", prev, k)
		}
		prev = k
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in      string
		want    DateKey
		wantErr bool
	}{
		{"2024-01-05", "2024-01-05", false},
		{" 2024-02-29 ", "2024-02-29", false},
		{"2024-01-05T23:30:00+09:00", "2024-01-05", false},
		{"2024-1-5", "", true},
		{"2023-02-29", "", true},
		{"yesterday", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKey(tt.in)
		if tt.wantErr {
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("ParseKey(%q): expected ParseError, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseKey(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKey(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDateKeyTime(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	got := DateKey("2024-03-10").Time(loc)
	if !got.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, loc)) {
		t.Errorf("Unexpected time: %v", got)
	}
	if !DateKey("bogus").Time(loc).IsZero() {
		t.Error("Expected zero time for invalid key")
	}
	if DateKey("2024-13-01").Valid() {
		t.Error("Expected 2024-13-01 to be invalid")
	}
}

func TestWeekStart(t *testing.T) {
	// 2024-01-03 は水曜日
	wed := time.Date(2024, 1, 3, 15, 4, 5, 0, time.UTC)

	if got := WeekStart(wed, time.Sunday); !got.Equal(date(2023, 12, 31)) {
		t.Errorf("Sunday week start = %v, want 2023-12-31", got)
	}
	if got := WeekStart(wed, time.Monday); !got.Equal(date(2024, 1, 1)) {
		t.Errorf("Monday week start = %v, want 2024-01-01", got)
	}
	// 週の初日はそのまま（時刻のみ切り捨て）
	sun := time.Date(2023, 12, 31, 8, 0, 0, 0, time.UTC)
	if got := WeekStart(sun, time.Sunday); !got.Equal(date(2023, 12, 31)) {
		t.Errorf("Expected Sunday to be its own week start, got %v", got)
	}
	if got := WeekEnd(wed, time.Sunday); !got.Equal(date(2024, 1, 6)) {
		t.Errorf("WeekEnd = %v, want 2024-01-06", got)
	}
}

func TestAddDaysDoesNotMutate(t *testing.T) {
	orig := date(2024, 2, 28)
	next := AddDays(orig, 1)
	if !orig.Equal(date(2024, 2, 28)) {
		t.Error("AddDays modified its argument")
	}
	if KeyOf(next) != "2024-02-29" {
		t.Errorf("Expected leap day, got %s", KeyOf(next))
	}
}

func TestWeeks(t *testing.T) {
	start := date(2024, 1, 1) // Monday
	end := date(2024, 1, 7)   // Sunday

	var got []DateKey
	for w := range Weeks(start, end, time.Sunday) {
		got = append(got, KeyOf(w))
	}
	want := []DateKey{"2023-12-31", "2024-01-07"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d weeks, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("week %d = %s, want %s", i, got[i], want[i])
		}
	}

	// 再度イテレートしても同じ結果になること
	n := 0
	for range Weeks(start, end, time.Sunday) {
		n++
	}
	if n != 2 {
		t.Errorf("Expected restartable sequence of 2 weeks, got %d", n)
	}

	n = 0
	for range Weeks(start, end, time.Monday) {
		n++
	}
	if n != 1 {
		t.Errorf("Expected 1 Monday-aligned week, got %d", n)
	}
}

func TestWeeksEarlyBreak(t *testing.T) {
	n := 0
	for range Weeks(date(2024, 1, 1), date(2024, 12, 31), time.Sunday) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("Expected to stop after 3 weeks, got %d", n)
	}
}

func TestDefaultRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 30, 0, 0, time.UTC)
	start, end := DefaultRange(now)
	if !end.Equal(date(2024, 6, 15)) {
		t.Errorf("end = %v", end)
	}
	if !start.Equal(date(2023, 6, 15)) {
		t.Errorf("start = %v", start)
	}

	// うるう日は翌年の3月1日に正規化される
	start, _ = DefaultRange(date(2024, 2, 29))
	if KeyOf(start) != "2023-03-01" {
		t.Errorf("Expected 2023-03-01, got %s", KeyOf(start))
	}
}

func TestInRange(t *testing.T) {
	start, end := date(2024, 1, 1), date(2024, 1, 7)
	if !InRange(time.Date(2024, 1, 7, 23, 0, 0, 0, time.UTC), start, end) {
		t.Error("Expected last day to be in range")
	}
	if InRange(date(2023, 12, 31), start, end) {
		t.Error("Expected day before start to be out of range")
	}
}

func TestParseWeekday(t *testing.T) {
	tests := map[string]time.Weekday{
		"sunday": time.Sunday,
		"Mon":    time.Monday,
		"6":      time.Saturday,
		"0":      time.Sunday,
	}
	for in, want := range tests {
		got, err := ParseWeekday(in)
		if err != nil || got != want {
			t.Errorf("ParseWeekday(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"7", "funday", ""} {
		if _, err := ParseWeekday(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}
