package engine

import (
	"strings"
	"testing"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	cfg, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if cfg != nil {
		t.Fatal("expected nil config for empty script")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval error for empty script")
	}
}

func TestEvaluateMinimalScript(t *testing.T) {
	eng := NewEngine()

	cfg, evalErrs, err := eng.Evaluate(`(lattice :edge 0.2 :nx 4 :ny 5 :block-rows 2)`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.EdgeLength != 0.2 || cfg.NX != 4 || cfg.NY != 5 || cfg.BlockRows != 2 {
		t.Errorf("config = %+v", cfg)
	}
	// Validation defaults applied.
	if cfg.ScaleFactor != 2 || cfg.Keep != "top" {
		t.Errorf("defaults not applied: scale=%g keep=%q", cfg.ScaleFactor, cfg.Keep)
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine()

	cfg, evalErrs, err := eng.Evaluate("(lattice :edge 0.2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if cfg != nil {
		t.Fatal("expected nil config on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine()

	cfg, evalErrs, err := eng.Evaluate("(+ 1 no-such-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if cfg != nil {
		t.Fatal("expected nil config on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvaluateMissingLattice(t *testing.T) {
	eng := NewEngine()

	cfg, evalErrs, err := eng.Evaluate(`(substrate :thickness 3)`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if cfg != nil {
		t.Fatal("expected nil config without a lattice form")
	}
	if len(evalErrs) == 0 || !strings.Contains(evalErrs[0].Message, "lattice") {
		t.Errorf("eval errors = %v, want missing-lattice message", evalErrs)
	}
}

func TestEvaluateInvalidConfig(t *testing.T) {
	eng := NewEngine()

	// Script parses and runs, but block-rows is out of range for ny.
	cfg, evalErrs, err := eng.Evaluate(`(lattice :edge 0.2 :nx 4 :ny 2 :block-rows 7)`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if cfg != nil {
		t.Fatal("expected nil config on validation failure")
	}
	if len(evalErrs) == 0 || !strings.Contains(evalErrs[0].Message, "block_rows") {
		t.Errorf("eval errors = %v, want block_rows message", evalErrs)
	}
}

func TestEvaluateComputedValues(t *testing.T) {
	eng := NewEngine()

	// User code can compute arguments before passing them in.
	source := `
; two tiles of 10 rows
(def rows (* 2 10))
(lattice :edge 0.2 :nx 8 :ny rows :block-rows 5)
`
	cfg, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if cfg.NY != 20 {
		t.Errorf("ny = %d, want 20", cfg.NY)
	}
}

func TestParseZygomysErrorLineExtraction(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
	}{
		{"error on line", "Error on line 3: unexpected token", 3},
		{"line prefix", "line 7: something broke", 7},
		{"no line info", "something else entirely", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1", len(errs))
			}
			if errs[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tt.wantLine)
			}
			if errs[0].Message == "" {
				t.Error("message should not be empty")
			}
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }
