package models

import (
	"fmt"
	"math"
	"strconv"
)

// DefaultSemanticWeight is the blend weight applied when a caller enables
// hybrid ranking without choosing a weight.
const DefaultSemanticWeight = 0.5

// TuningConfig carries caller-supplied ranking parameters. Explicit is true
// only when the caller actually sent tuning; without it selection keeps the
// upstream ordering untouched. Nil pool caps mean unlimited, zero means empty.
type TuningConfig struct {
	Explicit       bool    `json:"explicit"`
	SemanticWeight float64 `json:"semantic_weight"`
	SemanticK      *int    `json:"semantic_k,omitempty"`
	LexicalK       *int    `json:"lexical_k,omitempty"`
	FinalTopK      *int    `json:"final_top_k,omitempty"`
}

// DefaultTuningConfig returns the non-explicit pass-through configuration.
func DefaultTuningConfig() TuningConfig {
	return TuningConfig{Explicit: false, SemanticWeight: DefaultSemanticWeight}
}

// Validate rejects out-of-range parameters before any scoring begins.
func (t TuningConfig) Validate() error {
	if math.IsNaN(t.SemanticWeight) || math.IsInf(t.SemanticWeight, 0) {
		return fmt.Errorf("%w: semantic_weight is not finite", ErrInvalidTuningParameter)
	}
	if t.SemanticWeight < 0 || t.SemanticWeight > 1 {
		return fmt.Errorf("%w: semantic_weight %v outside [0,1]", ErrInvalidTuningParameter, t.SemanticWeight)
	}
	for _, p := range []struct {
		name string
		val  *int
	}{
		{"semantic_k", t.SemanticK},
		{"lexical_k", t.LexicalK},
		{"final_top_k", t.FinalTopK},
	} {
		if p.val != nil && *p.val < 0 {
			return fmt.Errorf("%w: %s %d is negative", ErrInvalidTuningParameter, p.name, *p.val)
		}
	}
	return nil
}

// ParseTuningConfig normalizes a loose parameter object from an external
// caller. Unknown keys are ignored. Numeric strings are accepted for the
// weight and counts; anything uncoercible is an ErrInvalidTuningParameter.
// A nil or empty map yields the non-explicit default.
func ParseTuningConfig(raw map[string]any) (TuningConfig, error) {
	cfg := DefaultTuningConfig()
	if len(raw) == 0 {
		return cfg, nil
	}
	cfg.Explicit = true

	if v, ok := raw["semantic_weight"]; ok && v != nil {
		w, err := coerceFloat(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: semantic_weight: %v", ErrInvalidTuningParameter, err)
		}
		cfg.SemanticWeight = w
	}
	for _, p := range []struct {
		key string
		dst **int
	}{
		{"semantic_k", &cfg.SemanticK},
		{"lexical_k", &cfg.LexicalK},
		{"final_top_k", &cfg.FinalTopK},
	} {
		v, ok := raw[p.key]
		if !ok || v == nil {
			continue
		}
		n, err := coerceInt(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidTuningParameter, p.key, err)
		}
		*p.dst = &n
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func coerceFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as number", x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func coerceInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		return int(x), nil
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as integer", x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
