package services

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/kractero/cardex/cardex/database/models"
	"github.com/kractero/cardex/cardex/query"
	"github.com/kractero/cardex/cardex/status"
)

type mapCache struct {
	entries map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]byte{}}
}

func (c *mapCache) Get(ctx context.Context, key, origin string) ([]byte, bool) {
	data, ok := c.entries[key]
	return data, ok
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte, origin string) {
	c.entries[key] = value
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		page       int
		wantLimit  int
		wantPage   int
		wantOffset int
	}{
		{name: "defaults", limit: 0, page: 0, wantLimit: DefaultPageSize, wantPage: 1, wantOffset: 0},
		{name: "explicit", limit: 50, page: 3, wantLimit: 50, wantPage: 3, wantOffset: 100},
		{name: "limit clamped to maximum", limit: 9999, page: 1, wantLimit: MaxPageSize, wantPage: 1, wantOffset: 0},
		{name: "negative limit", limit: -5, page: 1, wantLimit: DefaultPageSize, wantPage: 1, wantOffset: 0},
		{name: "negative page", limit: 25, page: -2, wantLimit: 25, wantPage: 1, wantOffset: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, page, offset := paginate(tt.limit, tt.page)
			if limit != tt.wantLimit || page != tt.wantPage || offset != tt.wantOffset {
				t.Errorf("paginate(%d, %d) = (%d, %d, %d), want (%d, %d, %d)",
					tt.limit, tt.page, limit, page, offset,
					tt.wantLimit, tt.wantPage, tt.wantOffset)
			}
		})
	}
}

func TestOverlay(t *testing.T) {
	table := status.NewTable()
	table.Replace(map[string]bool{"1": true, "3": true})
	s := NewCardService(nil, newMapCache(), table)

	cards := []*models.Card{{ID: 1}, {ID: 2}, {ID: 3}}
	s.overlay(cards)

	if !cards[0].CTE || cards[1].CTE || !cards[2].CTE {
		t.Errorf("overlay flags = %v %v %v, want true false true",
			cards[0].CTE, cards[1].CTE, cards[2].CTE)
	}
}

func TestFilterByStatus(t *testing.T) {
	cards := []*models.Card{
		{ID: 1, CTE: true},
		{ID: 2, CTE: false},
		{ID: 3, CTE: true},
	}

	exists := filterByStatus(cards, &query.Clause{Field: query.FieldStatus, Operator: "IS", Value: "Exists"})
	if got := ids(exists); !reflect.DeepEqual(got, []int64{1, 3}) {
		t.Errorf("Exists kept %v, want [1 3]", got)
	}

	gone := filterByStatus(cards, &query.Clause{Field: query.FieldStatus, Operator: "IS", Value: "Deleted"})
	if got := ids(gone); !reflect.DeepEqual(got, []int64{2}) {
		t.Errorf("non-Exists kept %v, want [2]", got)
	}
}

func ids(cards []*models.Card) []int64 {
	out := make([]int64, 0, len(cards))
	for _, card := range cards {
		out = append(out, card.ID)
	}
	return out
}

func TestStatusFor(t *testing.T) {
	table := status.NewTable()
	table.Replace(map[string]bool{"101": true})
	cache := newMapCache()
	s := NewCardService(nil, cache, table)

	got, err := s.StatusFor(context.Background(), []string{"101", "102"}, "qa")
	if err != nil {
		t.Fatalf("StatusFor() error = %v", err)
	}
	want := map[string]bool{"101": true, "102": false}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StatusFor() = %v, want %v", got, want)
	}

	// The verdict is cached under the order-independent id signature; a
	// permuted id list must answer from the same entry.
	if len(cache.entries) != 1 {
		t.Fatalf("cache entries = %d, want 1", len(cache.entries))
	}
	table.Replace(map[string]bool{})
	got, err = s.StatusFor(context.Background(), []string{"102", "101"}, "qa")
	if err != nil {
		t.Fatalf("StatusFor() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("permuted lookup bypassed the cache: %v", got)
	}
}

// A result envelope that travels through the cache must come back intact,
// badge and trophy maps included; the overlay then rewrites only the flag.
func TestQueryResultRoundTrip(t *testing.T) {
	region := "Osiris"
	result := QueryResult{
		Total: 1,
		Limit: 25,
		Page:  1,
		Cards: []*models.Card{{
			ID:       42,
			Name:     "Testlandia",
			Season:   "S3",
			Region:   &region,
			Badges:   map[string]int{"Supporter": 1, "Easter Egg": 3},
			Trophies: map[string]int{"NATIONS-1": 1},
		}},
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded QueryResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(&result, &decoded) {
		t.Errorf("round trip changed the envelope:\n got %+v\nwant %+v", decoded, result)
	}
}
