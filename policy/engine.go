// Package policy evaluates the admission policy applied to relay requests.
package policy

import (
	"context"
	"fmt"
	"sort"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// Limits are passed to the policy as input.limits.
type Limits struct {
	MaxMessageLength    int  `json:"max_message_length"`
	MaxTopK             int  `json:"max_top_k"`
	RequireConversation bool `json:"require_conversation"`
}

// Input is the document the policy is evaluated against.
type Input struct {
	MessageLength   int     `json:"message_length"`
	TopK            int     `json:"top_k"`
	Temperature     float64 `json:"temperature"`
	HasConversation bool    `json:"has_conversation"`
	Limits          Limits  `json:"limits"`
}

// Decision is the outcome of an evaluation.
type Decision struct {
	Allow  bool
	Reason string
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.relay_policy.deny"),
		rego.Module("relay_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks a request. An empty deny set allows it; otherwise the
// alphabetically first reason is reported.
func (e *Engine) Evaluate(ctx context.Context, input Input) (Decision, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(toMap(input)))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{Allow: true}, nil
	}

	reasons, ok := results[0].Expressions[0].Value.([]interface{})
	if !ok {
		return Decision{}, fmt.Errorf("unexpected policy result type %T", results[0].Expressions[0].Value)
	}
	if len(reasons) == 0 {
		return Decision{Allow: true}, nil
	}

	msgs := make([]string, 0, len(reasons))
	for _, r := range reasons {
		msgs = append(msgs, fmt.Sprint(r))
	}
	sort.Strings(msgs)
	return Decision{Allow: false, Reason: msgs[0]}, nil
}

func toMap(in Input) map[string]interface{} {
	return map[string]interface{}{
		"message_length":   in.MessageLength,
		"top_k":            in.TopK,
		"temperature":      in.Temperature,
		"has_conversation": in.HasConversation,
		"limits": map[string]interface{}{
			"max_message_length":   in.Limits.MaxMessageLength,
			"max_top_k":            in.Limits.MaxTopK,
			"require_conversation": in.Limits.RequireConversation,
		},
	}
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package relay_policy

deny[msg] {
	input.limits.max_message_length > 0
	input.message_length > input.limits.max_message_length
	msg := sprintf("message exceeds %d characters", [input.limits.max_message_length])
}

deny[msg] {
	input.limits.max_top_k > 0
	input.top_k > input.limits.max_top_k
	msg := sprintf("topK exceeds %d", [input.limits.max_top_k])
}

deny["conversationId is required"] {
	input.limits.require_conversation
	not input.has_conversation
}
`
