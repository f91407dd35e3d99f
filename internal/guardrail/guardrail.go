// Package guardrail screens user input and generated output against content policies.
package guardrail

import (
	"context"

	"github.com/wolfman30/support-agent-router/pkg/logging"
)

// Direction tells a filter which side of the pipeline the text came from.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Result is the outcome of filtering one piece of text.
type Result struct {
	IsBlocked      bool     `json:"is_blocked"`
	FilteredText   string   `json:"filtered_text"`
	BlockedReasons []string `json:"blocked_reasons,omitempty"`
}

// Pass returns a result that lets text through unchanged.
func Pass(text string) Result {
	return Result{FilteredText: text}
}

// Filter checks text in one direction. Implementations return an error only
// when the check itself could not run; callers decide whether to fail open.
type Filter interface {
	Apply(ctx context.Context, text string, dir Direction) (Result, error)
}

// Chain runs filters in order, feeding each the previous filter's text.
// The first block stops the chain. A failing link is logged and skipped.
type Chain struct {
	filters []Filter
	logger  *logging.Logger
}

func NewChain(logger *logging.Logger, filters ...Filter) *Chain {
	if logger == nil {
		logger = logging.Default()
	}
	kept := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			kept = append(kept, f)
		}
	}
	return &Chain{filters: kept, logger: logger}
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int {
	return len(c.filters)
}

func (c *Chain) Apply(ctx context.Context, text string, dir Direction) (Result, error) {
	current := text
	for i, f := range c.filters {
		res, err := f.Apply(ctx, current, dir)
		if err != nil {
			c.logger.Warn("guardrail filter failed, skipping", "index", i, "direction", dir, "error", err)
			continue
		}
		if res.IsBlocked {
			return res, nil
		}
		current = res.FilteredText
	}
	return Pass(current), nil
}
