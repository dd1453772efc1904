package dump

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseBadgeLabel(t *testing.T) {
	tests := []struct {
		label     string
		wantName  string
		wantCount int
	}{
		{"Supporter", "Supporter", 1},
		{"Easter Eggs (x3)", "Easter Egg", 3},
		{"Admin (x2)", "Admin", 2},
		{"Founder (x1)", "Founder", 1},
		{"Weird (xbogus)", "Weird", 1},
	}
	for _, tt := range tests {
		name, count := ParseBadgeLabel(tt.label)
		if name != tt.wantName || count != tt.wantCount {
			t.Errorf("ParseBadgeLabel(%q) = (%q, %d), want (%q, %d)",
				tt.label, name, count, tt.wantName, tt.wantCount)
		}
	}
}

func TestParsePopulation(t *testing.T) {
	tests := []struct {
		description string
		want        int64
		wantOK      bool
	}{
		{"1.234 billion Population and rising", 1234000000, true},
		{"506 million Population", 506000000, true},
		{"2.05b Population", 2050000000, true},
		{"740m Population", 740000000, true},
		{"", 0, false},
		{"A nation of note", 0, false},
		{"many Population", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePopulation(tt.description)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParsePopulation(%q) = (%d, %v), want (%d, %v)",
				tt.description, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestRecordCard(t *testing.T) {
	record := Record{
		ID:          7,
		Name:        "Testlandia",
		Region:      "Osiris",
		Description: "1.5 billion Population",
		Badges:      map[string]int{"Supporter": 1},
	}

	card := record.Card("S2")
	if card.Season != "S2" {
		t.Errorf("Season = %q", card.Season)
	}
	if card.Region == nil || *card.Region != "Osiris" {
		t.Errorf("Region = %v", card.Region)
	}
	if card.Population == nil || *card.Population != 1500000000 {
		t.Errorf("Population = %v", card.Population)
	}
	if card.Trophies == nil {
		t.Error("nil trophies must become an empty map, not NULL jsonb")
	}

	exnation := Record{ID: 8, Name: "Gone"}.Card("S1")
	if exnation.Region != nil {
		t.Errorf("empty region must map to NULL, got %v", *exnation.Region)
	}
	if exnation.Population != nil {
		t.Errorf("missing population preamble must map to NULL, got %v", *exnation.Population)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	records := []Record{
		{
			ID:           1,
			Name:         "Testlandia",
			Type:         "Nation",
			Category:     "Inoffensive Centrist Democracy",
			Region:       "Osiris",
			CardCategory: "ultra-rare",
			Description:  "1.2 billion Population",
			Badges:       map[string]int{"Easter Egg": 3},
			Trophies:     map[string]int{"NATIONS-1": 1},
		},
		{ID: 2, Name: "Blanksville"},
	}

	path := filepath.Join(t.TempDir(), "cardlist_S3.jsonl")
	if err := WriteFile(path, records); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d records, want 2", len(got))
	}
	if !reflect.DeepEqual(got[0], records[0]) {
		t.Errorf("record 0 changed:\n got %+v\nwant %+v", got[0], records[0])
	}
	// The writer normalizes nil maps to empty ones so the column never
	// loads as NULL.
	if got[1].Badges == nil || got[1].Trophies == nil {
		t.Errorf("record 1 maps = %v %v, want empty maps", got[1].Badges, got[1].Trophies)
	}
}

func TestReadFileReportsBadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jsonl")
	if err := os.WriteFile(path, []byte("{\"ID\":1}\nnot json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadFile(path)
	if err == nil {
		t.Fatal("ReadFile accepted a malformed line")
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Errorf("error %q does not name the offending line", err)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("ReadFile on a missing file must fail")
	}
}
