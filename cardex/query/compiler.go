package query

import (
	"log/slog"
	"strings"

	"github.com/kractero/cardex/cardex/database/models"
	"github.com/uptrace/bun"
)

type Partition string

const (
	PartitionS1 Partition = "S1"
	PartitionS2 Partition = "S2"
	PartitionS3 Partition = "S3"
	PartitionS4 Partition = "S4"

	DefaultPartition = PartitionS3
)

// ParsePartition resolves the "from" parameter; unknown values fall back to
// the default partition rather than failing the request.
func ParsePartition(s string) Partition {
	switch p := Partition(strings.ToUpper(s)); p {
	case PartitionS1, PartitionS2, PartitionS3, PartitionS4:
		return p
	}
	return DefaultPartition
}

// Table returns the partition's backing table name.
func (p Partition) Table() string {
	return models.SeasonTable(string(p))
}

type Projection string

const (
	ProjectionAll Projection = "all"
	ProjectionMin Projection = "min"
)

// ParseProjection resolves the "select" parameter; unknown values fall back
// to the full projection.
func ParseProjection(s string) Projection {
	if Projection(s) == ProjectionMin {
		return ProjectionMin
	}
	return ProjectionAll
}

type predicateKind int

const (
	predCompare predicateKind = iota
	predNullCheck
	predJSONEmpty
	predJSONThreshold
	predJSONPathNull
)

// Predicate is one compiled filter fragment: a parameterized expression plus
// its bound arguments. Column identifiers come only from the closed clause
// vocabulary; every caller-supplied literal travels through Args.
type Predicate struct {
	Kind      predicateKind
	Qualifier Qualifier
	Expr      string
	Args      []any
}

// Compiled is the outcome of compiling a clause list: the predicates that
// reach the store, and the status clause (if any) that instead drives the
// post-retrieval filter. The status clause is spliced out entirely so it
// never consumes a boolean-qualifier slot between its neighbors. Effective
// holds the clauses that survived compilation (status included) in source
// order; the cache key is derived from it so that requests differing only in
// dropped clauses share an entry.
type Compiled struct {
	Predicates []Predicate
	Status     *Clause
	Effective  []Clause
}

// Compile translates parsed clauses into typed predicates. Clauses that
// cannot be compiled deterministically (unknown trophy name, unsupported
// scalar operator) are dropped with a debug log, mirroring the parser's
// malformed-token policy.
func Compile(clauses []Clause) Compiled {
	var out Compiled
	for i := range clauses {
		clause := clauses[i]

		if clause.Field == FieldStatus {
			if out.Status == nil {
				out.Status = &clause
			}
			out.Effective = append(out.Effective, clause)
			continue
		}

		pred, ok := compileClause(clause)
		if !ok {
			slog.Debug("Dropped uncompilable clause",
				slog.String("type", "req"),
				slog.String("field", clause.Field),
				slog.String("operator", clause.Operator),
				slog.String("value", clause.Value))
			continue
		}
		out.Predicates = append(out.Predicates, pred)
		out.Effective = append(out.Effective, clause)
	}
	return out
}

func compileClause(clause Clause) (Predicate, bool) {
	switch clause.Field {
	case FieldExNation:
		expr := "region IS NOT NULL"
		if strings.EqualFold(clause.Value, "TRUE") {
			expr = "region IS NULL"
		}
		return Predicate{Kind: predNullCheck, Qualifier: clause.Qualifier, Expr: expr}, true

	case FieldBadges:
		if clause.Operator == "HAS NO" {
			return Predicate{Kind: predJSONEmpty, Qualifier: clause.Qualifier, Expr: "badges = '{}'::jsonb"}, true
		}
		if clause.Operator == "IS" {
			return Predicate{
				Kind:      predJSONThreshold,
				Qualifier: clause.Qualifier,
				Expr:      "(badges ->> ?)::numeric >= 1",
				Args:      []any{clause.Value},
			}, true
		}
		return Predicate{
			Kind:      predJSONPathNull,
			Qualifier: clause.Qualifier,
			Expr:      "badges ->> ? IS NULL",
			Args:      []any{clause.Value},
		}, true

	case FieldTrophies:
		if clause.Operator == "HAS NO" {
			return Predicate{Kind: predJSONEmpty, Qualifier: clause.Qualifier, Expr: "trophies = '{}'::jsonb"}, true
		}
		key, ok := TrophyKey(clause.Value)
		if !ok {
			return Predicate{}, false
		}
		path := key + "-" + clause.Percentage
		expr := "trophies ->> ? IS NULL"
		if clause.Operator == "IS" {
			expr = "trophies ->> ? IS NOT NULL"
		}
		return Predicate{
			Kind:      predJSONPathNull,
			Qualifier: clause.Qualifier,
			Expr:      expr,
			Args:      []any{path},
		}, true
	}

	column, ok := scalarColumns[clause.Field]
	if !ok {
		return Predicate{}, false
	}

	value := clause.Value
	var op string
	switch clause.Operator {
	case "=", "==", "IS":
		op = "="
	case "!=", "<>", "IS NOT":
		op = "<>"
	case "LIKE":
		op = "LIKE"
		value = "%" + value + "%"
	case "NOT LIKE":
		op = "NOT LIKE"
		value = "%" + value + "%"
	default:
		return Predicate{}, false
	}

	return Predicate{
		Kind:      predCompare,
		Qualifier: clause.Qualifier,
		Expr:      "LOWER(" + column + ") " + op + " LOWER(?)",
		Args:      []any{value},
	}, true
}

// Apply chains the predicates onto a select query, joined left to right by
// each predicate's own qualifier. The first predicate's qualifier is not
// emitted since no predicate precedes it. There is no precedence grouping
// beyond this flat chain; that is the grammar's compatibility contract.
func Apply(q *bun.SelectQuery, preds []Predicate) *bun.SelectQuery {
	for i, pred := range preds {
		if i > 0 && pred.Qualifier == QualifierOr {
			q = q.WhereOr(pred.Expr, pred.Args...)
		} else {
			q = q.Where(pred.Expr, pred.Args...)
		}
	}
	return q
}

// Build assembles the select and count queries for one logical request:
// projection, partition table, compiled predicates, stable ordering, and
// pagination.
func Build(db *bun.DB, proj Projection, part Partition, preds []Predicate, limit, offset int, dest *[]*models.Card) (*bun.SelectQuery, *bun.SelectQuery) {
	sel := db.NewSelect().
		Model(dest).
		ModelTableExpr("? AS c", bun.Ident(part.Table()))

	if proj == ProjectionMin {
		sel = sel.Column("id", "name", "season")
	}

	sel = Apply(sel, preds).
		Order("id ASC").
		Limit(limit).
		Offset(offset)

	count := db.NewSelect().
		Model((*models.Card)(nil)).
		ModelTableExpr("? AS c", bun.Ident(part.Table()))
	count = Apply(count, preds)

	return sel, count
}
