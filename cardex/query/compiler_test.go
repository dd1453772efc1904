package query

import (
	"reflect"
	"testing"
)

func TestCompileScalar(t *testing.T) {
	tests := []struct {
		name     string
		clause   Clause
		wantExpr string
		wantArgs []any
		wantOK   bool
	}{
		{
			name:     "equality",
			clause:   Clause{Qualifier: QualifierAnd, Field: "name", Operator: "IS", Value: "Testlandia"},
			wantExpr: "LOWER(name) = LOWER(?)",
			wantArgs: []any{"Testlandia"},
			wantOK:   true,
		},
		{
			name:     "inequality",
			clause:   Clause{Qualifier: QualifierAnd, Field: "category", Operator: "IS NOT", Value: "anarchy"},
			wantExpr: "LOWER(category) <> LOWER(?)",
			wantArgs: []any{"anarchy"},
			wantOK:   true,
		},
		{
			name:     "like wraps the pattern",
			clause:   Clause{Qualifier: QualifierAnd, Field: "motto", Operator: "LIKE", Value: "freedom"},
			wantExpr: "LOWER(motto) LIKE LOWER(?)",
			wantArgs: []any{"%freedom%"},
			wantOK:   true,
		},
		{
			name:     "not like wraps the pattern",
			clause:   Clause{Qualifier: QualifierOr, Field: "region", Operator: "NOT LIKE", Value: "pacific"},
			wantExpr: "LOWER(region) NOT LIKE LOWER(?)",
			wantArgs: []any{"%pacific%"},
			wantOK:   true,
		},
		{
			name:   "unsupported operator rejected",
			clause: Clause{Qualifier: QualifierAnd, Field: "name", Operator: ">", Value: "a"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, ok := compileClause(tt.clause)
			if ok != tt.wantOK {
				t.Fatalf("compileClause() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if pred.Expr != tt.wantExpr {
				t.Errorf("Expr = %q, want %q", pred.Expr, tt.wantExpr)
			}
			if !reflect.DeepEqual(pred.Args, tt.wantArgs) {
				t.Errorf("Args = %v, want %v", pred.Args, tt.wantArgs)
			}
			if pred.Qualifier != tt.clause.Qualifier {
				t.Errorf("Qualifier = %q, want %q", pred.Qualifier, tt.clause.Qualifier)
			}
		})
	}
}

func TestCompileExNation(t *testing.T) {
	pred, ok := compileClause(Clause{Qualifier: QualifierAnd, Field: FieldExNation, Operator: "IS", Value: "TRUE"})
	if !ok || pred.Expr != "region IS NULL" {
		t.Errorf("exnation TRUE compiled to %q, want region IS NULL", pred.Expr)
	}

	pred, ok = compileClause(Clause{Qualifier: QualifierAnd, Field: FieldExNation, Operator: "IS", Value: "FALSE"})
	if !ok || pred.Expr != "region IS NOT NULL" {
		t.Errorf("exnation FALSE compiled to %q, want region IS NOT NULL", pred.Expr)
	}
}

func TestCompileBadges(t *testing.T) {
	pred, ok := compileClause(Clause{Qualifier: QualifierAnd, Field: FieldBadges, Operator: "HAS NO", Value: "any"})
	if !ok || pred.Expr != "badges = '{}'::jsonb" || len(pred.Args) != 0 {
		t.Errorf("HAS NO compiled to %q args %v", pred.Expr, pred.Args)
	}

	pred, ok = compileClause(Clause{Qualifier: QualifierAnd, Field: FieldBadges, Operator: "IS", Value: "Supporter"})
	if !ok || pred.Expr != "(badges ->> ?)::numeric >= 1" {
		t.Errorf("IS compiled to %q", pred.Expr)
	}
	if !reflect.DeepEqual(pred.Args, []any{"Supporter"}) {
		t.Errorf("IS args = %v", pred.Args)
	}

	pred, ok = compileClause(Clause{Qualifier: QualifierAnd, Field: FieldBadges, Operator: "IS NOT", Value: "Supporter"})
	if !ok || pred.Expr != "badges ->> ? IS NULL" {
		t.Errorf("IS NOT compiled to %q", pred.Expr)
	}
}

func TestCompileTrophies(t *testing.T) {
	pred, ok := compileClause(Clause{
		Qualifier: QualifierAnd, Field: FieldTrophies,
		Operator: "IS", Value: "Most Nations", Percentage: "1",
	})
	if !ok {
		t.Fatal("known trophy name failed to compile")
	}
	if pred.Expr != "trophies ->> ? IS NOT NULL" {
		t.Errorf("Expr = %q", pred.Expr)
	}
	if !reflect.DeepEqual(pred.Args, []any{"NATIONS-1"}) {
		t.Errorf("Args = %v, want [NATIONS-1]", pred.Args)
	}

	pred, ok = compileClause(Clause{
		Qualifier: QualifierAnd, Field: FieldTrophies,
		Operator: "IS NOT", Value: "Most Nations", Percentage: "5",
	})
	if !ok || pred.Expr != "trophies ->> ? IS NULL" {
		t.Errorf("negated trophy compiled to %q", pred.Expr)
	}

	if _, ok := compileClause(Clause{
		Qualifier: QualifierAnd, Field: FieldTrophies,
		Operator: "IS", Value: "Not A Real Trophy", Percentage: "1",
	}); ok {
		t.Error("unknown trophy name compiled; it must be dropped")
	}

	pred, ok = compileClause(Clause{Qualifier: QualifierAnd, Field: FieldTrophies, Operator: "HAS NO", Value: "any"})
	if !ok || pred.Expr != "trophies = '{}'::jsonb" {
		t.Errorf("HAS NO compiled to %q", pred.Expr)
	}
}

func TestCompileStatusSplicing(t *testing.T) {
	clauses := ParseClauses("name-LIKE-land,status-IS-Exists,OR-region-IS-osiris")
	compiled := Compile(clauses)

	if compiled.Status == nil {
		t.Fatal("status clause was not captured")
	}
	if compiled.Status.Value != "Exists" {
		t.Errorf("status value = %q", compiled.Status.Value)
	}
	if len(compiled.Predicates) != 2 {
		t.Fatalf("predicates = %d, want 2; the status clause must not reach the store", len(compiled.Predicates))
	}
	// The OR qualifier of the clause after the spliced status clause survives.
	if compiled.Predicates[1].Qualifier != QualifierOr {
		t.Errorf("second predicate qualifier = %q, want OR", compiled.Predicates[1].Qualifier)
	}
	if len(compiled.Effective) != 3 {
		t.Errorf("effective clauses = %d, want 3", len(compiled.Effective))
	}
}

func TestCompileFirstStatusWins(t *testing.T) {
	clauses := ParseClauses("status-IS-Exists,status-IS NOT-Exists")
	compiled := Compile(clauses)

	if compiled.Status == nil || compiled.Status.Operator != "IS" {
		t.Fatalf("first status clause must win, got %+v", compiled.Status)
	}
	if len(compiled.Predicates) != 0 {
		t.Errorf("predicates = %d, want 0", len(compiled.Predicates))
	}
}

func TestCompileDropsUncompilable(t *testing.T) {
	clauses := ParseClauses("trophies-IS-Bogus Trophy-1,name-IS-testlandia")
	compiled := Compile(clauses)

	if len(compiled.Predicates) != 1 {
		t.Fatalf("predicates = %d, want 1", len(compiled.Predicates))
	}
	if len(compiled.Effective) != 1 {
		t.Fatalf("effective = %d, want 1; dropped clauses must not shape the cache key", len(compiled.Effective))
	}
	if compiled.Effective[0].Field != "name" {
		t.Errorf("effective[0].Field = %q", compiled.Effective[0].Field)
	}
}

func TestParsePartition(t *testing.T) {
	tests := []struct {
		in   string
		want Partition
	}{
		{"S1", PartitionS1},
		{"s2", PartitionS2},
		{"S3", PartitionS3},
		{"S4", PartitionS4},
		{"", PartitionS3},
		{"S9", PartitionS3},
	}
	for _, tt := range tests {
		if got := ParsePartition(tt.in); got != tt.want {
			t.Errorf("ParsePartition(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseProjection(t *testing.T) {
	if got := ParseProjection("min"); got != ProjectionMin {
		t.Errorf("ParseProjection(min) = %q", got)
	}
	if got := ParseProjection(""); got != ProjectionAll {
		t.Errorf("ParseProjection() = %q, want all", got)
	}
	if got := ParseProjection("everything"); got != ProjectionAll {
		t.Errorf("ParseProjection(everything) = %q, want all", got)
	}
}
