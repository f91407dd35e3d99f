package guardrail

import (
	"context"
	"regexp"
	"strings"
)

const (
	// blockThreshold: inputs scoring at or above this are blocked outright.
	blockThreshold = 0.7
	// sanitizeThreshold: inputs scoring at or above this have markers stripped.
	sanitizeThreshold = 0.3
)

type injectionPattern struct {
	re     *regexp.Regexp
	reason string
	weight float64
}

// Attempts to override the assistant's instructions.
var overridePatterns = []injectionPattern{
	{regexp.MustCompile(`(?i)(ignore|disregard|forget)\s+(all\s+)?(previous|prior|above|earlier|your)\s+(instructions?|rules?|prompts?|guidelines?|directives?)`), "injection:ignore_instructions", 0.9},
	{regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an|my)\s+`), "injection:role_reassignment", 0.7},
	{regexp.MustCompile(`(?i)new\s+instructions?\s*:|system\s*prompt\s*:|<<\s*sys(tem)?\s*>>`), "injection:new_instructions", 0.9},
	{regexp.MustCompile(`(?i)override\s+(your\s+)?(system|instructions?|rules?|safety|guidelines?)`), "injection:override", 0.8},
	{regexp.MustCompile(`(?i)(pretend|imagine|assume)\s+(that\s+)?(you\s+)?(are|have|don'?t\s+have)\s+(no\s+)?(rules?|restrictions?|limits?|filters?)`), "injection:pretend_no_rules", 0.9},
	{regexp.MustCompile(`(?i)bypass\s+(your\s+)?(safety|filters?|restrictions?|guidelines?|rules?|content\s+policy)`), "injection:bypass", 0.8},
	{regexp.MustCompile(`(?i)jailbreak|DAN\s*mode|developer\s*mode|unrestricted\s*mode`), "injection:jailbreak", 0.9},
}

// Attempts to pull out the prompt, credentials or other users' tickets.
var exfiltrationPatterns = []injectionPattern{
	{regexp.MustCompile(`(?i)(reveal|show|print|repeat|tell|what\s+(is|are))\s+(me\s+)?(your\s+)?(system\s+prompt|instructions?|initial\s+prompt|hidden\s+prompt)`), "exfiltration:system_prompt", 0.8},
	{regexp.MustCompile(`(?i)(list|show|give|dump)\s+(me\s+)?(all\s+)?(the\s+)?(other\s+)?(users?'?s?|customers?'?s?)\s+(tickets?|data|records?|emails?)`), "exfiltration:other_users", 0.7},
	{regexp.MustCompile(`(?i)(reveal|show|print|dump|give|leak|list|tell|what\s+(is|are))\s+(me\s+)?((the|your|all|any)\s+)*(api|secret|aws|database|db)\s*(key|token|secret|password|credential)s?\b`), "exfiltration:credentials", 0.8},
	{regexp.MustCompile(`(?i)repeat\s+(everything|all|the\s+text)\s+(above|before|from\s+the\s+(start|beginning))`), "exfiltration:repeat_above", 0.7},
}

// Fake turn boundaries and encoded payloads.
var framingPatterns = []injectionPattern{
	{regexp.MustCompile(`(?i)\[/?INST\]|\[/?SYS\]|<\|im_start\|>|<\|im_end\|>|<\|system\|>`), "framing:special_tokens", 0.9},
	{regexp.MustCompile(`(?i)###\s*(system|instruction|assistant)\s*:`), "framing:role_markers", 0.7},
	{regexp.MustCompile(`(?i)(end\s+of\s+)?(system|assistant)\s*(message|prompt)\s*[\-=]{2,}`), "framing:fake_boundary", 0.8},
	{regexp.MustCompile(`(?i)base64\s*(encode|decode|:)`), "framing:encoding", 0.4},
	{regexp.MustCompile(`<\s*(script|iframe|object|embed)\b`), "framing:html_injection", 0.6},
}

var injectionPatterns = concatPatterns(overridePatterns, exfiltrationPatterns, framingPatterns)

func concatPatterns(groups ...[]injectionPattern) []injectionPattern {
	var out []injectionPattern
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var (
	specialTokenRe = regexp.MustCompile(`(?i)\[/?INST\]|\[/?SYS\]|<\|im_start\|>|<\|im_end\|>|<\|system\|>`)
	roleMarkerRe   = regexp.MustCompile(`(?i)###\s*(system|instruction|assistant)\s*:`)
	htmlTagRe      = regexp.MustCompile(`(?i)<\s*/?\s*(script|iframe|object|embed)\b[^>]*>`)
)

type leakPattern struct {
	re     *regexp.Regexp
	reason string
}

var leakPatterns = []leakPattern{
	{regexp.MustCompile(`(?i)my (system\s+)?prompt\s+(is|says|tells|instructs)`), "leak:system_prompt"},
	{regexp.MustCompile(`(?i)my instructions?\s+(are|say|tell|include)`), "leak:instructions"},
	{regexp.MustCompile(`(?i)(api[_\s]?key|secret[_\s]?key|access[_\s]?token|bearer\s+token)\s*[:=]\s*\S+`), "leak:credential"},
	{regexp.MustCompile(`AKIA[A-Z0-9]{16}`), "leak:aws_key"},
	{regexp.MustCompile(`(?i)(postgres|mysql|redis|mongodb)://\S+`), "leak:database_url"},
	{regexp.MustCompile(`arn:aws:[a-z0-9\-]+:[a-z0-9\-]*:\d{12}:\S+`), "leak:aws_arn"},
}

// PatternFilter is a local heuristic guard: a weighted prompt-injection scan
// on input and a secret-leak scan on output. It never returns an error.
type PatternFilter struct{}

func NewPatternFilter() *PatternFilter {
	return &PatternFilter{}
}

func (f *PatternFilter) Apply(_ context.Context, text string, dir Direction) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Pass(text), nil
	}
	if dir == DirectionOutput {
		return scanOutput(text), nil
	}
	return scanInput(text), nil
}

// InjectionScore returns the heuristic risk score for text and the signals that fired.
// The highest matching weight counts, plus 0.1 for every additional signal, capped at 1.
func InjectionScore(text string) (float64, []string) {
	var reasons []string
	maxWeight := 0.0
	for _, p := range injectionPatterns {
		if p.re.MatchString(text) {
			reasons = append(reasons, p.reason)
			if p.weight > maxWeight {
				maxWeight = p.weight
			}
		}
	}
	score := maxWeight
	if len(reasons) > 1 {
		score += float64(len(reasons)-1) * 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score, reasons
}

func scanInput(text string) Result {
	score, reasons := InjectionScore(text)
	switch {
	case score >= blockThreshold:
		return Result{IsBlocked: true, FilteredText: text, BlockedReasons: reasons}
	case score >= sanitizeThreshold:
		return Pass(stripMarkers(text))
	default:
		return Pass(text)
	}
}

func stripMarkers(text string) string {
	cleaned := specialTokenRe.ReplaceAllString(text, "")
	cleaned = roleMarkerRe.ReplaceAllString(cleaned, "")
	cleaned = htmlTagRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

func scanOutput(text string) Result {
	var reasons []string
	for _, p := range leakPatterns {
		if p.re.MatchString(text) {
			reasons = append(reasons, p.reason)
		}
	}
	if len(reasons) == 0 {
		return Pass(text)
	}
	return Result{IsBlocked: true, FilteredText: text, BlockedReasons: reasons}
}
