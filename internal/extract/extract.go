// Package extract locates the answer text, sources and usage inside an
// upstream webhook payload whose schema is not fixed.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xiaot623/gogo/chatrelay/internal/domain"
)

// PrimaryKey is the canonical answer field.
const PrimaryKey = "output"

// WrapperKey is the one nesting level that is searched.
const WrapperKey = "data"

// AlternativeKeys are tried after PrimaryKey, in this order.
var AlternativeKeys = []string{"response", "answer", "result", "text", "content", "message"}

// ErrNoAnswerFound is matched by *NoAnswerError.
var ErrNoAnswerFound = errors.New("no answer found in upstream payload")

// NoAnswerError reports the top-level keys seen when no answer could be located.
type NoAnswerError struct {
	Keys []string
}

func (e *NoAnswerError) Error() string {
	return fmt.Sprintf("%s (keys: %s)", ErrNoAnswerFound, strings.Join(e.Keys, ", "))
}

func (e *NoAnswerError) Is(target error) bool {
	return target == ErrNoAnswerFound
}

// strategy is one named lookup for the answer text.
type strategy struct {
	name   string
	lookup func(obj map[string]any) (string, bool)
}

// strategies is built once from the key lists, so adding a synonym to
// AlternativeKeys is enough to have it tried both flat and under WrapperKey.
var strategies = buildStrategies()

func buildStrategies() []strategy {
	keys := append([]string{PrimaryKey}, AlternativeKeys...)
	out := make([]strategy, 0, 2*len(keys))
	for _, k := range keys {
		out = append(out, strategy{name: k, lookup: flatKey(k)})
	}
	for _, k := range keys {
		out = append(out, strategy{name: WrapperKey + "." + k, lookup: nestedKey(WrapperKey, k)})
	}
	return out
}

func flatKey(key string) func(map[string]any) (string, bool) {
	return func(obj map[string]any) (string, bool) {
		return answerString(obj[key])
	}
}

func nestedKey(wrapper, key string) func(map[string]any) (string, bool) {
	return func(obj map[string]any) (string, bool) {
		inner, ok := obj[wrapper].(map[string]any)
		if !ok {
			return "", false
		}
		return answerString(inner[key])
	}
}

func answerString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Decode parses raw upstream bytes into a generic JSON value for Extract.
func Decode(raw []byte) (any, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode upstream payload: %w", err)
	}
	return payload, nil
}

// Extract returns the answer found in a decoded JSON value. The value must be an
// object, or an array whose first element is an object.
func Extract(payload any) (*domain.ExtractedAnswer, error) {
	obj, ok := asObject(payload)
	if !ok {
		return nil, &NoAnswerError{}
	}

	text, _, found := findAnswer(obj)
	if !found {
		return nil, &NoAnswerError{Keys: Keys(obj)}
	}

	return &domain.ExtractedAnswer{
		Text:    text,
		Sources: extractSources(obj),
		Usage:   extractUsage(obj),
	}, nil
}

// Strategy returns the name of the lookup that matched, for diagnostics.
func Strategy(payload any) (string, bool) {
	obj, ok := asObject(payload)
	if !ok {
		return "", false
	}
	_, name, found := findAnswer(obj)
	return name, found
}

func findAnswer(obj map[string]any) (string, string, bool) {
	for _, s := range strategies {
		if text, ok := s.lookup(obj); ok {
			return text, s.name, true
		}
	}
	return "", "", false
}

// Keys returns the sorted top-level keys of an object.
func Keys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func asObject(payload any) (map[string]any, bool) {
	switch v := payload.(type) {
	case map[string]any:
		return v, true
	case []any:
		if len(v) == 0 {
			return nil, false
		}
		obj, ok := v[0].(map[string]any)
		return obj, ok
	default:
		return nil, false
	}
}

// lookupOptional finds key at the top level, then under WrapperKey.
func lookupOptional(obj map[string]any, key string) (any, bool) {
	if v, ok := obj[key]; ok && v != nil {
		return v, true
	}
	if inner, ok := obj[WrapperKey].(map[string]any); ok {
		if v, ok := inner[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func extractSources(obj map[string]any) []domain.Source {
	raw, ok := lookupOptional(obj, "sources")
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	var sources []domain.Source
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		sources = append(sources, domain.Source{
			Title:   stringField(m, "title"),
			URL:     stringField(m, "url"),
			Snippet: stringField(m, "snippet"),
		})
	}
	return sources
}

func extractUsage(obj map[string]any) *domain.Usage {
	raw, ok := lookupOptional(obj, "usage")
	if !ok {
		return nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	return &domain.Usage{
		Input:  firstCount(m, "tokensInput", "input"),
		Output: firstCount(m, "tokensOutput", "output"),
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// firstCount returns the first key holding a JSON number, or 0.
func firstCount(m map[string]any, keys ...string) int {
	for _, k := range keys {
		if f, ok := m[k].(float64); ok {
			return int(f)
		}
	}
	return 0
}
