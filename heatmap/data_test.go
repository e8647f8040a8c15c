package heatmap

import (
	"testing"

	"github.com/stsysd/weekwide/calendar"
)

func TestStoreReplaceAllRoundTrip(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]Data{{Key: "2024-01-01", Value: 5}, {Key: "2024-01-02", Value: 10}})

	if got := s.Get("2024-01-01"); got != 5 {
		t.Errorf("Expected 5, got %v", got)
	}
	if got := s.Max(); got != 10 {
		t.Errorf("Expected max 10, got %v", got)
	}
	if got := s.Get("2024-03-01"); got != 0 {
		t.Errorf("Expected 0 for absent day, got %v", got)
	}

	s.Clear()
	if got := s.Get("2024-01-01"); got != 0 {
		t.Errorf("Expected 0 after Clear, got %v", got)
	}
	if s.Max() != 0 || s.Len() != 0 {
		t.Errorf("Expected empty store after Clear, got len=%d max=%v", s.Len(), s.Max())
	}
}

func TestStoreReplaceAllRecomputesMax(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]Data{{Key: "2024-01-01", Value: 50}})
	s.ReplaceAll([]Data{{Key: "2024-01-02", Value: 7}, {Key: "2024-01-03", Value: 3}})

	if s.Max() != 7 {
		t.Errorf("Expected max to be recomputed to 7, got %v", s.Max())
	}
	if s.Len() != 2 || s.Points()[0].Key != "2024-01-02" {
		t.Errorf("Expected old contents to be dropped, got %v", s.Points())
	}
}

func TestStoreReplaceAllLastKeyWins(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]Data{{Key: "2024-01-01", Value: 9}, {Key: "2024-01-01", Value: 2}})
	if s.Get("2024-01-01") != 2 {
		t.Errorf("Expected last value to win, got %v", s.Get("2024-01-01"))
	}
	// 上書きされた値は最大値に含まれない
	if s.Max() != 2 {
		t.Errorf("Expected max 2, got %v", s.Max())
	}
}

func TestStoreNegativeValuesKeepMaxAtZero(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]Data{{Key: "2024-01-01", Value: -3}})
	if s.Max() != 0 {
		t.Errorf("Expected max 0, got %v", s.Max())
	}
	if s.Get("2024-01-01") != -3 {
		t.Errorf("Expected negative value to be stored as-is")
	}
}

func TestStoreUpsertMaxMonotonic(t *testing.T) {
	var s Store // ゼロ値でも利用できること
	values := []float64{3, 1, 8, 2, 8, 0.5}
	for i, v := range values {
		s.Upsert(calendar.DateKey("2024-01-0"+string(rune('1'+i))), v)
		for _, prev := range values[:i+1] {
			if s.Max() < prev {
				t.Fatalf("Max %v dropped below upserted value %v", s.Max(), prev)
			}
		}
	}
	if s.Max() != 8 {
		t.Errorf("Expected max 8, got %v", s.Max())
	}
}

func TestStoreUpsertKeepsStaleMax(t *testing.T) {
	// 最大値を持つ日を小さい値で上書きしても Max は下がらない
	s := NewStore()
	s.ReplaceAll([]Data{{Key: "2024-01-01", Value: 10}})
	s.Upsert("2024-01-01", 2)

	if s.Get("2024-01-01") != 2 {
		t.Errorf("Expected overwritten value 2, got %v", s.Get("2024-01-01"))
	}
	if s.Max() != 10 {
		t.Errorf("Expected stale max 10, got %v", s.Max())
	}

	// ReplaceAll で再計算される
	s.ReplaceAll(s.Points())
	if s.Max() != 2 {
		t.Errorf("Expected max 2 after ReplaceAll, got %v", s.Max())
	}
}

func TestStoreUpsertBelowMax(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]Data{{Key: "2024-01-01", Value: 10}})
	s.Upsert("2024-02-01", 3)
	if s.Max() != 10 {
		t.Errorf("Expected max to remain 10, got %v", s.Max())
	}
	if s.Get("2024-02-01") != 3 {
		t.Errorf("Expected 3, got %v", s.Get("2024-02-01"))
	}
}

func TestStorePointsSorted(t *testing.T) {
	s := NewStore()
	s.Upsert("2024-03-01", 1)
	s.Upsert("2023-12-31", 2)
	s.Upsert("2024-01-15", 3)

	points := s.Points()
	want := []calendar.DateKey{"2023-12-31", "2024-01-15", "2024-03-01"}
	if len(points) != len(want) {
		t.Fatalf("Expected %d points, got %d", len(want), len(points))
	}
	for i, k := range want {
		if points[i].Key != k {
			t.Errorf("points[%d] = %s, want %s", i, points[i].Key, k)
		}
	}
}
