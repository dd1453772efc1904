package query

import (
	"fmt"
	"sort"
	"strings"
)

// CacheKey derives the canonical signature of a logical query. Two requests
// that would execute the same query share one key regardless of the textual
// order of their AND-joined clause tokens; anything that changes the executed
// query (field, operator, value, tier, partition, projection, pagination)
// changes the key.
//
// Reordering applies only within maximal runs of AND-joined clauses. An
// OR-joined clause is order-significant under the flat left-to-right grammar,
// so it stays pinned at its position and starts a fresh run behind it.
func CacheKey(proj Projection, part Partition, clauses []Clause, limit, page int) string {
	normalized := normalizeClauses(clauses)

	parts := make([]string, 0, len(normalized))
	for _, clause := range normalized {
		parts = append(parts, fmt.Sprintf("%s:%s:%s:%s:%s",
			clause.Qualifier, clause.Field, clause.Operator, clause.Value, clause.Percentage))
	}

	return fmt.Sprintf("cards:v1:%s:%s:%d:%d:%s",
		proj, part, limit, page, strings.Join(parts, "|"))
}

func normalizeClauses(clauses []Clause) []Clause {
	out := make([]Clause, len(clauses))
	copy(out, clauses)

	// The first clause's qualifier never reaches the compiled query; pin it
	// to AND so "a" and "AND-a" normalize identically.
	if len(out) > 0 {
		out[0].Qualifier = QualifierAnd
	}

	runStart := 0
	for i := 0; i <= len(out); i++ {
		atBoundary := i == len(out) || (i > runStart && out[i].Qualifier == QualifierOr)
		if !atBoundary {
			continue
		}
		sortRun(out[runStart:i])
		runStart = i
	}
	return out
}

// sortRun orders one run. A run's leading clause may carry the OR qualifier;
// it stays pinned while its AND-joined followers sort among themselves, which
// cannot change semantics under the flat grammar.
func sortRun(run []Clause) {
	if len(run) < 2 {
		return
	}
	head := 0
	if run[0].Qualifier == QualifierOr {
		head = 1
	}
	sort.Slice(run[head:], func(i, j int) bool {
		a, b := run[head+i], run[head+j]
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		if a.Operator != b.Operator {
			return a.Operator < b.Operator
		}
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		return a.Percentage < b.Percentage
	})
}

// StatusKey derives the cache signature for a bulk status lookup from the
// raw id list, order-independent.
func StatusKey(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return "cte:v1:" + strings.Join(sorted, ",")
}
