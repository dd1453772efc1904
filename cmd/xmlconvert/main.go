// Command xmlconvert converts the upstream per-season card list XML dumps
// into the line-oriented JSON files the loader consumes.
//
//	xmlconvert -in ./dumps -out ./data -seasons S1,S2,S3,S4
package main

import (
	"encoding/xml"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kractero/cardex/cardex/dump"
	"github.com/kractero/cardex/cardex/logger"
)

type cardList struct {
	Cards []xmlCard `xml:"SET>CARD"`
}

type xmlCard struct {
	ID           int64       `xml:"ID"`
	Name         string      `xml:"NAME"`
	Type         string      `xml:"TYPE"`
	Motto        string      `xml:"MOTTO"`
	Category     string      `xml:"CATEGORY"`
	Region       string      `xml:"REGION"`
	Flag         string      `xml:"FLAG"`
	CardCategory string      `xml:"CARDCATEGORY"`
	Description  string      `xml:"DESCRIPTION"`
	Badges       []xmlKeyed  `xml:"BADGES>BADGE"`
	Trophies     []xmlKeyed  `xml:"TROPHIES>TROPHY"`
}

// xmlKeyed covers both badge shapes the dumps use: a typed element
// (<BADGE type="commend">2</BADGE>) and a bare display label
// (<BADGE>Easter Eggs (x3)</BADGE>). Trophies are always typed.
type xmlKeyed struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler("xmlconvert")))

	in := flag.String("in", ".", "directory containing cardlist_S<N>.xml files")
	out := flag.String("out", ".", "directory to write cardlist_S<N>.jsonl files")
	seasons := flag.String("seasons", "S1,S2,S3,S4", "comma-separated seasons to convert")
	flag.Parse()

	failed := false
	for _, season := range strings.Split(*seasons, ",") {
		season = strings.TrimSpace(season)
		if season == "" {
			continue
		}

		src := filepath.Join(*in, fmt.Sprintf("cardlist_%s.xml", season))
		dst := filepath.Join(*out, fmt.Sprintf("cardlist_%s.jsonl", season))

		count, err := convert(src, dst)
		if err != nil {
			logger.LogError("Conversion failed", err, slog.String("season", season))
			failed = true
			continue
		}
		slog.Info("Converted season dump",
			slog.String("season", season),
			slog.String("output", dst),
			slog.Int("cards", count))
	}
	if failed {
		os.Exit(1)
	}
}

func convert(src, dst string) (int, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return 0, err
	}

	var list cardList
	if err := xml.Unmarshal(data, &list); err != nil {
		return 0, fmt.Errorf("parse %s: %w", src, err)
	}

	records := make([]dump.Record, 0, len(list.Cards))
	for _, card := range list.Cards {
		records = append(records, dump.Record{
			ID:           card.ID,
			Name:         card.Name,
			Type:         card.Type,
			Motto:        card.Motto,
			Category:     card.Category,
			Region:       card.Region,
			Flag:         card.Flag,
			CardCategory: card.CardCategory,
			Description:  card.Description,
			Badges:       collectBadges(card.Badges),
			Trophies:     collectTrophies(card.Trophies),
		})
	}

	if err := dump.WriteFile(dst, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func collectBadges(badges []xmlKeyed) map[string]int {
	out := make(map[string]int, len(badges))
	for _, badge := range badges {
		if badge.Type != "" {
			out[badge.Type] = atoiOr(badge.Value, 1)
			continue
		}
		name, count := dump.ParseBadgeLabel(badge.Value)
		if name != "" {
			out[name] = count
		}
	}
	return out
}

func collectTrophies(trophies []xmlKeyed) map[string]int {
	out := make(map[string]int, len(trophies))
	for _, trophy := range trophies {
		if trophy.Type == "" {
			continue
		}
		out[trophy.Type] = atoiOr(trophy.Value, 0)
	}
	return out
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}
