package models

import (
	"strings"

	"github.com/uptrace/bun"
)

// Seasons lists every card partition in ascending order. Each season is
// stored in its own table, see SeasonTable.
var Seasons = []string{"S1", "S2", "S3", "S4"}

// SeasonTable maps a season identifier to its backing table name.
func SeasonTable(season string) string {
	return "cards_" + strings.ToLower(season)
}

// Card is one trading-card record. Badges and trophies are JSONB columns
// decoded straight into maps; CTE is never persisted, it is overlaid from the
// daily status snapshot after rows are read.
type Card struct {
	bun.BaseModel `bun:"table:cards_s3,alias:c"`

	ID           int64          `bun:"id,pk" json:"id"`
	Name         string         `bun:"name,notnull" json:"name"`
	Season       string         `bun:"season,notnull" json:"season"`
	Type         string         `bun:"type" json:"type,omitempty"`
	Motto        string         `bun:"motto" json:"motto,omitempty"`
	Category     string         `bun:"category" json:"category,omitempty"`
	Region       *string        `bun:"region" json:"region,omitempty"`
	Flag         string         `bun:"flag" json:"flag,omitempty"`
	CardCategory string         `bun:"cardcategory" json:"cardcategory,omitempty"`
	Population   *int64         `bun:"population" json:"population,omitempty"`
	Description  string         `bun:"description" json:"description,omitempty"`
	Badges       map[string]int `bun:"badges,type:jsonb" json:"badges"`
	Trophies     map[string]int `bun:"trophies,type:jsonb" json:"trophies"`

	CTE bool `bun:"-" json:"cte"`
}
