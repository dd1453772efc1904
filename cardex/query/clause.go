package query

import (
	"log/slog"
	"strings"
)

type Qualifier string

const (
	QualifierAnd Qualifier = "AND"
	QualifierOr  Qualifier = "OR"
)

// Clause is one parsed filter term. Field is drawn from a closed vocabulary;
// anything else never reaches the compiler.
type Clause struct {
	Qualifier  Qualifier
	Field      string
	Operator   string
	Value      string
	Percentage string
}

// FieldStatus is the synthetic field that never compiles into the predicate;
// it only drives post-retrieval filtering against the live status snapshot.
const (
	FieldStatus   = "status"
	FieldExNation = "exnation"
	FieldBadges   = "badges"
	FieldTrophies = "trophies"
)

// scalarColumns is the closed vocabulary of directly comparable columns.
// Field names double as column names, so nothing outside this map is ever
// spliced into SQL text.
var scalarColumns = map[string]string{
	"name":         "name",
	"type":         "type",
	"motto":        "motto",
	"category":     "category",
	"region":       "region",
	"flag":         "flag",
	"cardcategory": "cardcategory",
	"description":  "description",
	"season":       "season",
}

func knownField(field string) bool {
	switch field {
	case FieldStatus, FieldExNation, FieldBadges, FieldTrophies:
		return true
	}
	_, ok := scalarColumns[field]
	return ok
}

// ParseClauses turns the raw comma-separated clause grammar into an ordered
// Clause list. Each token is hyphen-delimited into 3-5 positional fields:
// qualifier?-field-operator-value-percentage?. Malformed tokens (wrong arity,
// unknown field) are dropped with a debug log; parsing never fails.
func ParseClauses(raw string) []Clause {
	if raw == "" {
		return nil
	}

	var clauses []Clause
	for _, token := range strings.Split(raw, ",") {
		clause, ok := parseToken(token)
		if !ok {
			slog.Debug("Dropped malformed clause token",
				slog.String("type", "req"),
				slog.String("token", token))
			continue
		}
		clauses = append(clauses, clause)
	}
	return clauses
}

func parseToken(token string) (Clause, bool) {
	parts := strings.Split(token, "-")

	qualifier := QualifierAnd
	switch parts[0] {
	case string(QualifierAnd), string(QualifierOr):
		qualifier = Qualifier(parts[0])
		parts = parts[1:]
	}

	// A 4-part value ending in the literal "rare" is shorthand for the
	// hyphenated ultra-rare tier.
	if len(parts) == 4 && parts[3] == "rare" {
		parts[2] = "ultra-rare"
		parts = parts[:3]
	}

	var clause Clause
	switch len(parts) {
	case 3:
		clause = Clause{Qualifier: qualifier, Field: parts[0], Operator: parts[1], Value: parts[2]}
	case 4:
		clause = Clause{Qualifier: qualifier, Field: parts[0], Operator: parts[1], Value: parts[2], Percentage: parts[3]}
	default:
		return Clause{}, false
	}

	if clause.Field == "" || clause.Operator == "" || !knownField(clause.Field) {
		return Clause{}, false
	}
	return clause, true
}
