package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/giygas/medref-api/entities"
)

const (
	metadataKey    = "metadata"
	pageContentKey = "page_content"
)

// metadataOf returns the nested metadata mapping of a record, or an empty map.
func metadataOf(rec entities.Record) map[string]any {
	if meta, ok := rec.Payload[metadataKey].(map[string]any); ok {
		return meta
	}
	return map[string]any{}
}

// flatten copies metadata into a new payload, leaving out the keys in skip.
func flatten(meta map[string]any, skip map[string]struct{}) entities.Payload {
	out := make(entities.Payload, len(meta)+8)
	for k, v := range meta {
		if _, drop := skip[k]; drop {
			continue
		}
		out[k] = v
	}
	return out
}

// text renders scalar payload values as strings; nil and containers become "".
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// list returns v as a slice when it is one.
func list(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

// stringList flattens a list or comma separated string into trimmed non-empty strings.
func stringList(v any) []string {
	var out []string
	if s, ok := v.(string); ok {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	for _, item := range list(v) {
		if s := strings.TrimSpace(text(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// setDefault stores "" under key when the key is missing or null.
func setDefault(p entities.Payload, keys ...string) {
	for _, k := range keys {
		if v, ok := p[k]; !ok || v == nil {
			p[k] = ""
		}
	}
}

func keySet(keys ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
