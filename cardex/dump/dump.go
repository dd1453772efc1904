// Package dump reads and writes the card dump interchange format: one JSON
// object per line, with the upstream dump's original uppercase keys. The
// converter writes it and the loader reads it, so a season file produced by
// either tool round-trips through the other.
package dump

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/kractero/cardex/cardex/database/models"
)

// Record is one card as it appears in a season dump file.
type Record struct {
	ID           int64          `json:"ID"`
	Name         string         `json:"NAME"`
	Type         string         `json:"TYPE"`
	Motto        string         `json:"MOTTO"`
	Category     string         `json:"CATEGORY"`
	Region       string         `json:"REGION"`
	Flag         string         `json:"FLAG"`
	CardCategory string         `json:"CARDCATEGORY"`
	Description  string         `json:"DESCRIPTION"`
	Badges       map[string]int `json:"BADGES"`
	Trophies     map[string]int `json:"TROPHIES"`
}

// Card converts a dump record into a database row for the given season.
// An empty region becomes NULL so ex-nation lookups stay a plain null check,
// and the population is recovered from the description preamble when present.
func (r Record) Card(season string) *models.Card {
	card := &models.Card{
		ID:           r.ID,
		Name:         r.Name,
		Season:       season,
		Type:         r.Type,
		Motto:        r.Motto,
		Category:     r.Category,
		Flag:         r.Flag,
		CardCategory: r.CardCategory,
		Description:  r.Description,
		Badges:       r.Badges,
		Trophies:     r.Trophies,
	}
	if r.Region != "" {
		region := r.Region
		card.Region = &region
	}
	if pop, ok := ParsePopulation(r.Description); ok {
		card.Population = &pop
	}
	if card.Badges == nil {
		card.Badges = map[string]int{}
	}
	if card.Trophies == nil {
		card.Trophies = map[string]int{}
	}
	return card
}

// ParseBadgeLabel splits a display badge label into its base name and count.
// "Easter Eggs (x3)" yields ("Easter Egg", 3); a label without a count
// suffix yields the label itself with a count of 1.
func ParseBadgeLabel(label string) (string, int) {
	base, suffix, found := strings.Cut(label, "(")
	if !found {
		return strings.TrimSpace(label), 1
	}

	name := strings.TrimSpace(base)
	if name == "Easter Eggs" {
		name = "Easter Egg"
	}

	suffix = strings.TrimSuffix(strings.TrimPrefix(suffix, "x"), ")")
	count, err := strconv.Atoi(strings.TrimSpace(suffix))
	if err != nil || count < 1 {
		count = 1
	}
	return name, count
}

// ParsePopulation recovers the absolute population from a description that
// opens with a figure like "1.234 billion Population" or "506m Population".
func ParsePopulation(description string) (int64, bool) {
	fields := strings.Fields(description)
	if len(fields) < 2 {
		return 0, false
	}

	amount, scale := fields[0], fields[1]
	if scale == "Population" {
		// Compact form: the scale suffix rides on the number itself.
		switch {
		case strings.HasSuffix(amount, "b"):
			amount, scale = strings.TrimSuffix(amount, "b"), "billion"
		case strings.HasSuffix(amount, "m"):
			amount, scale = strings.TrimSuffix(amount, "m"), "million"
		default:
			return 0, false
		}
	}

	var exp int
	switch scale {
	case "million", "m":
		exp = 6
	case "billion", "b":
		exp = 9
	default:
		return 0, false
	}

	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, false
	}
	return int64(value * math.Pow10(exp)), true
}

// ReadFile parses a season dump file into records, reporting the offending
// line number on a decode failure.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var record Record
		if err := json.Unmarshal([]byte(text), &record); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// WriteFile writes records to a season dump file, one JSON object per line.
func WriteFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, record := range records {
		if record.Badges == nil {
			record.Badges = map[string]int{}
		}
		if record.Trophies == nil {
			record.Trophies = map[string]int{}
		}
		if err := enc.Encode(record); err != nil {
			return err
		}
	}
	return w.Flush()
}
