// Package guardrails enforces request policy before any generation work is
// done: prompt length, blocked terms and the per-request token budget.
package guardrails

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"hfserve/internal/config"
)

// Rule names the policy check that rejected a request.
type Rule string

const (
	RulePromptLength Rule = "prompt_length"
	RuleBlockedTerm  Rule = "blocked_term"
	RuleMaxNewTokens Rule = "max_new_tokens"
)

// Violation is returned when a request breaks policy. The message is safe to
// show to callers; it never names the blocked term that matched.
type Violation struct {
	Rule Rule
	msg  string
}

func (v *Violation) Error() string { return v.msg }

// IsViolation reports whether err is (or wraps) a guardrail violation.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}

// Evaluator validates prompts and token budgets. It holds no mutable state and
// is safe for concurrent use.
type Evaluator struct {
	enabled             bool
	maxPromptChars      int
	maxRequestNewTokens int
	blocked             []string
}

// New derives an Evaluator from settings. Blocked terms are split on commas,
// trimmed, lower-cased, and empty entries are dropped.
func New(s config.Settings) *Evaluator {
	terms := config.SplitCSV(s.BlockedTerms)
	for i, t := range terms {
		terms[i] = strings.ToLower(t)
	}
	return &Evaluator{
		enabled:             s.EnableGuardrails,
		maxPromptChars:      s.MaxPromptChars,
		maxRequestNewTokens: s.MaxRequestNewTokens,
		blocked:             terms,
	}
}

// Enabled reports whether checks are applied at all.
func (e *Evaluator) Enabled() bool { return e.enabled }

// BlockedTermCount returns how many blocked terms are configured.
func (e *Evaluator) BlockedTermCount() int { return len(e.blocked) }

// ValidatePrompt rejects prompts longer than the configured character limit
// or containing any blocked term as a case-insensitive substring.
func (e *Evaluator) ValidatePrompt(prompt string) error {
	if !e.enabled {
		return nil
	}
	if utf8.RuneCountInString(prompt) > e.maxPromptChars {
		return &Violation{
			Rule: RulePromptLength,
			msg:  fmt.Sprintf("prompt exceeds MAX_PROMPT_CHARS=%d", e.maxPromptChars),
		}
	}
	lowered := strings.ToLower(prompt)
	for _, term := range e.blocked {
		if strings.Contains(lowered, term) {
			return &Violation{
				Rule: RuleBlockedTerm,
				msg:  "prompt contains blocked content based on BLOCKED_TERMS policy",
			}
		}
	}
	return nil
}

// ValidateMaxNewTokens rejects token budgets above the per-request cap.
func (e *Evaluator) ValidateMaxNewTokens(requested int) error {
	if !e.enabled {
		return nil
	}
	if requested > e.maxRequestNewTokens {
		return &Violation{
			Rule: RuleMaxNewTokens,
			msg:  fmt.Sprintf("max_new_tokens exceeds MAX_REQUEST_NEW_TOKENS=%d", e.maxRequestNewTokens),
		}
	}
	return nil
}
