package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/cubecorner/internal/run"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: block-rows -> block_rows
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a
		// minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a SexpBool.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_top) and plain strings ("top").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// setFloat assigns a keyword arg to a float field when present.
func setFloat(pa kwArgs, key, form string, dst *float64) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", form, key, err)
	}
	*dst = f
	return nil
}

// setInt assigns a keyword arg to an int field when present.
func setInt(pa kwArgs, key, form string, dst *int) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	n, err := toInt(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", form, key, err)
	}
	*dst = n
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the generator DSL builtins into a zygomys
// environment. The builtins populate the provided config during
// evaluation; later forms overwrite earlier ones.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens become recognizable string
// literals.
func registerBuiltins(env *zygo.Zlisp, cfg *run.Config) {

	// -----------------------------------------------------------------------
	// (lattice :edge 0.2 :nx 50 :ny 40 :block-rows 4
	//          :scale 2 :keep :top :dx 0.3 :dy 0.25 :dx0 0.15)
	// -----------------------------------------------------------------------
	env.AddFunction("lattice", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if err := setFloat(pa, "edge", "lattice", &cfg.EdgeLength); err != nil {
			return zygo.SexpNull, err
		}
		if err := setInt(pa, "nx", "lattice", &cfg.NX); err != nil {
			return zygo.SexpNull, err
		}
		if err := setInt(pa, "ny", "lattice", &cfg.NY); err != nil {
			return zygo.SexpNull, err
		}
		if err := setInt(pa, "block-rows", "lattice", &cfg.BlockRows); err != nil {
			return zygo.SexpNull, err
		}
		if err := setFloat(pa, "scale", "lattice", &cfg.ScaleFactor); err != nil {
			return zygo.SexpNull, err
		}
		if err := setFloat(pa, "dx", "lattice", &cfg.DX); err != nil {
			return zygo.SexpNull, err
		}
		if err := setFloat(pa, "dy", "lattice", &cfg.DY); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["dx0"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("lattice: dx0: %w", err)
			}
			cfg.DX0 = &f
		}
		if v, ok := pa.kw["keep"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("lattice: keep: %w", err)
			}
			cfg.Keep = s
		}

		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (substrate :thickness 3 :margin 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("substrate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		sc := &run.SubstrateConfig{}

		if err := setFloat(pa, "thickness", "substrate", &sc.Thickness); err != nil {
			return zygo.SexpNull, err
		}
		if err := setFloat(pa, "margin", "substrate", &sc.Margin); err != nil {
			return zygo.SexpNull, err
		}

		cfg.Substrate = sc
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (frame :clearance 0.25 :margin 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("frame", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		fc := &run.FrameConfig{}

		if err := setFloat(pa, "clearance", "frame", &fc.Clearance); err != nil {
			return zygo.SexpNull, err
		}
		if err := setFloat(pa, "margin", "frame", &fc.Margin); err != nil {
			return zygo.SexpNull, err
		}

		cfg.Frame = fc
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (clip :margin-x -0.1 :margin-y -0.1 :granularity :cells)
	// -----------------------------------------------------------------------
	env.AddFunction("clip", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		cc := &run.ClipConfig{}

		if err := setFloat(pa, "margin-x", "clip", &cc.MarginX); err != nil {
			return zygo.SexpNull, err
		}
		if err := setFloat(pa, "margin-y", "clip", &cc.MarginY); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["granularity"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("clip: granularity: %w", err)
			}
			cc.Granularity = s
		}

		cfg.Clip = cc
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (workers 4)
	// -----------------------------------------------------------------------
	env.AddFunction("workers", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("workers requires exactly 1 argument, got %d", len(args))
		}
		n, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("workers: %w", err)
		}
		cfg.Workers = n
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (export "array.stl" :tolerance 0.01 :angular-tolerance 5 :overwrite true)
	// -----------------------------------------------------------------------
	env.AddFunction("export", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("export requires a destination path as first argument")
		}
		path, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("export: path: %w", err)
		}

		ec := &run.ExportConfig{Path: path}
		if err := setFloat(pa, "tolerance", "export", &ec.LinearTol); err != nil {
			return zygo.SexpNull, err
		}
		if err := setFloat(pa, "angular-tolerance", "export", &ec.AngularTol); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["overwrite"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("export: overwrite: %w", err)
			}
			ec.Overwrite = b
		}

		cfg.Export = ec
		return zygo.SexpNull, nil
	})
}
