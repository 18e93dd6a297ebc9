// Package cachekey implements the host-side counterpart of the in-sandbox
// cache-key function (C4): a deterministic digest of (tool name, arguments)
// with canonicalized key ordering, recomputed on the host for observability
// and cache-poisoning resistance — the host never trusts the cacheKey
// reported by the sandbox for anything beyond telemetry.
package cachekey

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Key returns the hex-encoded SHA-256 digest of tool + ":" + the canonical
// JSON encoding of args. It equals the in-sandbox runtime's key only when no
// string in args contains '<', '>', '&', U+2028, or U+2029: encoding/json
// escapes those characters and JSON.stringify does not.
func Key(tool string, args any) (string, error) {
	canon, err := Canonicalize(args)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(tool + ":" + canon))
	return hex.EncodeToString(sum[:]), nil
}

// Canonicalize renders v as JSON with object keys sorted, so that the
// resulting string is invariant under key permutation of any nested object.
func Canonicalize(v any) (string, error) {
	node, err := normalize(v)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(node)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// normalize rewrites a decoded JSON value tree into one that
// encoding/json.Marshal will render with object keys in sorted order, by
// replacing every map with an ordered slice of key/value pairs carried in a
// sortedObject, which implements its own MarshalJSON.
func normalize(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := make(sortedObject, 0, len(keys))
		for _, k := range keys {
			nv, err := normalize(val[k])
			if err != nil {
				return nil, err
			}
			obj = append(obj, sortedField{Key: k, Value: nv})
		}
		return obj, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			nv, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return val, nil
	}
}

type sortedField struct {
	Key   string
	Value any
}

type sortedObject []sortedField

// MarshalJSON renders the object with keys in the order they were appended,
// which normalize() guarantees to be sorted.
func (o sortedObject) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, f := range o {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	buf = append(buf, '}')
	return buf, nil
}
