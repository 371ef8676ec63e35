package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// Domain prefix for config fingerprints. Version suffix enables future
// algorithm migration without colliding with old fingerprints.
const fingerprintDomain = "mornc/config/v1"

// Fingerprint computes a stable SHA-256 identity for a resolved Config.
//
// Two runs with byte-identical effective configuration share a
// fingerprint, regardless of field order in the source CUE or Unicode
// normalization of path strings. The journal records the fingerprint per
// run, so idempotent re-runs are detectable after the fact.
//
// Format: SHA256(domain + 0x00 + canonicalJSON), hex encoded.
// The null separator prevents domain/data boundary ambiguity.
func Fingerprint(cfg *Config) (string, error) {
	canonical, err := marshalCanonical(configMap(cfg))
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(fingerprintDomain))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// configMap flattens a Config into plain maps and slices for canonical
// serialization. Optional empty fields are omitted so that "unset" and
// "explicitly empty" hash identically.
func configMap(cfg *Config) map[string]any {
	stages := make([]any, len(cfg.Enabled()))
	for i, s := range cfg.Enabled() {
		stages[i] = string(s)
	}

	m := map[string]any{
		"build": map[string]any{
			"command":  cfg.Build.Command,
			"args":     stringsToAny(cfg.Build.Args),
			"produces": cfg.Build.Produces,
		},
		"lower": map[string]any{
			"command":  cfg.Lower.Command,
			"args":     stringsToAny(cfg.Lower.Args),
			"produces": cfg.Lower.Produces,
		},
		"native": map[string]any{
			"command":  cfg.Native.Command,
			"optimize": cfg.Native.Optimize,
			"include":  cfg.Native.Include,
			"libs":     stringsToAny(cfg.Native.Libs),
			"output":   cfg.Native.Output,
		},
		"exec": map[string]any{
			"command": cfg.Exec.Command,
			"args":    stringsToAny(cfg.Exec.Args),
		},
		"stages": stages,
	}
	return m
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// marshalCanonical serializes maps, slices, strings, ints and bools into
// deterministic JSON: object keys sorted, strings NFC normalized, no HTML
// escaping. Floats and nulls are rejected; configuration values never
// contain either.
func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical form")
	case string:
		return marshalCanonicalString(val)
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := marshalCanonical(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := marshalCanonicalString(k)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := marshalCanonical(val[k])
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in canonical form: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical form: %T", v)
	}
}

// marshalCanonicalString encodes a string with NFC normalization applied
// at the serialization boundary and HTML escaping disabled.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds a trailing newline, remove it.
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}
	return result, nil
}
