// Package validate implements the website-value check applied to every row.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"website-cleaner/internal/domain"
)

// Rule decides whether a single website value passes validation.
// Implementations are pure and safe for concurrent use.
type Rule interface {
	Valid(value string) bool
}

// NewRule builds a rule from a validation config. An invalid custom
// pattern is rejected here, at job-creation time, so it never reaches
// a worker.
func NewRule(cfg domain.ValidationConfig) (Rule, error) {
	switch cfg.Mode {
	case domain.ValidationModePattern:
		re, err := regexp.Compile(cfg.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid validation pattern %q: %w", cfg.Pattern, err)
		}
		return &patternRule{re: re}, nil
	case domain.ValidationModeDefault, "":
		return urlRule{}, nil
	default:
		return nil, fmt.Errorf("unknown validation mode %q", cfg.Mode)
	}
}

// urlRule accepts well-formed absolute URLs: scheme and host must both
// be present. A bare hostname like "acme.com" does not pass.
type urlRule struct{}

// Valid implements Rule.
func (urlRule) Valid(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}

	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// patternRule accepts values the compiled expression matches anywhere.
// Patterns that need anchoring carry their own ^ and $.
type patternRule struct {
	re *regexp.Regexp
}

// Valid implements Rule. Blank values never pass, regardless of pattern.
func (r *patternRule) Valid(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	return r.re.MatchString(value)
}
