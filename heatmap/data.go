package heatmap

import (
	"sort"

	"github.com/stsysd/weekwide/calendar"
)

// Data holds the value recorded for one day.
type Data struct {
	Key   calendar.DateKey `json:"date" yaml:"date"`
	Value float64          `json:"value" yaml:"value"`
}

// Store is the sparse day→value mapping a grid reads from, plus the running
// maximum used for intensity scaling. The zero value is an empty store.
//
// ReplaceAll recomputes the maximum from scratch. Upsert only ever raises it:
// overwriting the day that holds the maximum with a smaller value leaves Max
// unchanged until the next ReplaceAll or Clear.
type Store struct {
	values map[calendar.DateKey]float64
	max    float64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{values: make(map[calendar.DateKey]float64)}
}

// ReplaceAll drops the current contents and loads points. When a key repeats,
// the last value wins. Max never drops below 0.
func (s *Store) ReplaceAll(points []Data) {
	s.values = make(map[calendar.DateKey]float64, len(points))
	s.max = 0
	for _, p := range points {
		s.values[p.Key] = p.Value
	}
	for _, v := range s.values {
		if v > s.max {
			s.max = v
		}
	}
}

// Upsert sets the value of a single day.
func (s *Store) Upsert(key calendar.DateKey, value float64) {
	if s.values == nil {
		s.values = make(map[calendar.DateKey]float64)
	}
	s.values[key] = value
	s.max = max(s.max, value)
}

// Clear empties the store and resets Max to 0.
func (s *Store) Clear() {
	s.values = make(map[calendar.DateKey]float64)
	s.max = 0
}

// Get returns the value stored for key, or 0 when the day has no entry.
func (s *Store) Get(key calendar.DateKey) float64 {
	return s.values[key]
}

// Max returns the running maximum.
func (s *Store) Max() float64 {
	return s.max
}

// Len returns the number of stored days.
func (s *Store) Len() int {
	return len(s.values)
}

// Points returns the stored entries in ascending date order.
func (s *Store) Points() []Data {
	points := make([]Data, 0, len(s.values))
	for k, v := range s.values {
		points = append(points, Data{Key: k, Value: v})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Key < points[j].Key
	})
	return points
}
