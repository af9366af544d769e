package mistral

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/i2y/llm-bedrock-mistral/provider"
)

// Defaults applied to options the caller leaves unset.
const (
	DefaultTemperature = 0.7
	DefaultTopP        = 1.0
	DefaultMaxTokens   = 1024

	maxTokensLimit = 1_000_000
)

// Options are the generation options accepted by Mistral models.
type Options struct {
	Temperature float64 `json:"temperature,omitempty" jsonschema:"minimum=0,maximum=1,default=0.7" jsonschema_description:"Determines the sampling temperature. Higher values like 0.8 increase randomness, while lower values like 0.2 make the output more focused and deterministic."`
	TopP        float64 `json:"top_p,omitempty" jsonschema:"minimum=0,maximum=1,default=1" jsonschema_description:"Nucleus sampling, where the model considers the tokens with top_p probability mass. For example, 0.1 means considering only the tokens in the top 10% probability mass."`
	MaxTokens   int     `json:"max_tokens,omitempty" jsonschema:"exclusiveMinimum=0,maximum=1000000,default=1024" jsonschema_description:"The maximum number of tokens to generate before stopping"`
}

// DefaultOptions returns the options used when nothing is set.
func DefaultOptions() Options {
	return Options{
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		MaxTokens:   DefaultMaxTokens,
	}
}

// InvalidOptionError reports an option value that violates its bound.
type InvalidOptionError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ParseOptions validates raw option values and fills in defaults for
// anything omitted. Numbers may be given as any numeric type, json.Number,
// or a numeric string.
func ParseOptions(raw provider.Options) (Options, error) {
	opts := DefaultOptions()

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		v := raw[key]
		if v == nil {
			continue
		}

		switch key {
		case "temperature", "top_p":
			f, ok := toFloat(v)
			if !ok {
				return Options{}, &InvalidOptionError{Field: key, Value: v, Reason: "must be a number"}
			}
			if err := checkUnit(key, f); err != nil {
				return Options{}, err
			}
			if key == "temperature" {
				opts.Temperature = f
			} else {
				opts.TopP = f
			}
		case "max_tokens":
			n, ok := toInt(v)
			if !ok {
				return Options{}, &InvalidOptionError{Field: key, Value: v, Reason: "must be an integer"}
			}
			if err := checkMaxTokens(n); err != nil {
				return Options{}, err
			}
			opts.MaxTokens = int(n)
		default:
			return Options{}, &InvalidOptionError{Field: key, Value: v, Reason: "is not a known option"}
		}
	}

	return opts, nil
}

// Validate checks a hand-built Options value against the declared bounds.
func (o Options) Validate() error {
	if err := checkUnit("temperature", o.Temperature); err != nil {
		return err
	}
	if err := checkUnit("top_p", o.TopP); err != nil {
		return err
	}
	return checkMaxTokens(int64(o.MaxTokens))
}

// checkUnit rejects values outside [0, 1], NaN included.
func checkUnit(field string, v float64) error {
	if !(v >= 0 && v <= 1) {
		return &InvalidOptionError{Field: field, Value: v, Reason: "must be in range 0-1"}
	}
	return nil
}

func checkMaxTokens(n int64) error {
	if n <= 0 || n > maxTokensLimit {
		return &InvalidOptionError{Field: "max_tokens", Value: n, Reason: "must be in range 1-1,000,000"}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}

	rv := reflect.ValueOf(v)
	switch {
	case rv.CanFloat():
		return rv.Float(), true
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	}
	return 0, false
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	}

	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return rv.Int(), true
	case rv.CanUint():
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case rv.CanFloat():
		return integral(rv.Float())
	}
	return 0, false
}

// integral accepts floats with no fractional part, like 512.0.
func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
