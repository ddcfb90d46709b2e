package module

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/bmatcuk/doublestar/v4"
)

// recursivePrefix anchors every configured glob at any directory depth.
const recursivePrefix = "**/"

// Pattern is a validated glob expression.
type Pattern struct {
	raw  string
	expr string
}

// NewPattern prefixes glob with the recursive wildcard and validates it.
func NewPattern(glob string) (Pattern, error) {
	expr := glob
	if !strings.HasPrefix(expr, recursivePrefix) {
		expr = recursivePrefix + strings.TrimPrefix(expr, "/")
	}
	if !doublestar.ValidatePattern(expr) {
		return Pattern{}, errors.Newf(errors.ErrInvalidPattern, "invalid glob pattern %q", glob).
			WithDetail("pattern", glob).
			WithHint("check brackets and braces in %q", glob)
	}
	return Pattern{raw: glob, expr: expr}, nil
}

// String returns the pattern as it was configured.
func (p Pattern) String() string {
	return p.raw
}

// Expr returns the compiled expression, including the recursive prefix.
func (p Pattern) Expr() string {
	return p.expr
}

// Matches reports whether path matches the pattern.
// Paths are compared in slash form so the same pattern works on every OS.
func (p Pattern) Matches(path string) bool {
	return doublestar.MatchUnvalidated(p.expr, filepath.ToSlash(path))
}
