// Package textsafety screens user-supplied text (usernames, chat) against
// restricted-term and profanity lists, defeating simple obfuscation such as
// leetspeak, separator insertion and character repetition.
//
// Matching is deliberately substring-based rather than word-boundary-based:
// an innocent word that happens to contain a blacklisted token will be
// rejected (the classic Scunthorpe problem). That tradeoff is intentional —
// for identity fields we prefer false positives over misses, and changing
// to word-boundary matching would change the accepted set.
package textsafety

import (
	"regexp"
	"strings"
)

// Config carries the word lists and limits. Lists are supplied by the host
// application so they can be updated without a code change; the zero value
// degrades to character-set and length checks only.
type Config struct {
	MinLength       int
	MaxLength       int
	RestrictedTerms []string
	Blacklist       []string
	LeetMap         map[rune]rune
}

// Result is the outcome of Validate. Error is empty when Valid is true.
type Result struct {
	Valid bool   `json:"is_valid"`
	Error string `json:"error,omitempty"`
}

// Validation error messages, ordered by the check that produces them.
const (
	ErrEmpty             = "username cannot be empty"
	ErrRestrictedContent = "username contains restricted content"
	ErrInappropriate     = "username contains inappropriate content"
	ErrInvalidCharacters = "username can only contain letters, numbers, and underscores"
	ErrTooShort          = "username is too short"
	ErrTooLong           = "username is too long"
)

// allowedPattern is checked against the RAW input, not the normalized form,
// so stripping during normalization never loosens the character gate.
var allowedPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Normalize reduces text to a canonical lowercase [a-z0-9] token:
// leet substitutions are applied per character, everything outside
// [a-z0-9] is stripped (collapsing "a_d_m_i_n" into "admin"), and runs of
// three or more identical characters shrink to two so doubled letters in
// real words survive.
func (c Config) Normalize(text string) string {
	lowered := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if sub, ok := c.LeetMap[r]; ok {
			r = sub
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	return collapseRuns(b.String())
}

// collapseRuns reduces runs of 3+ identical characters to exactly 2.
func collapseRuns(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var last rune
	run := 0
	for _, r := range s {
		if r == last {
			run++
		} else {
			last = r
			run = 1
		}
		if run <= 2 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate classifies text for use as an identity field. Checks run in a
// fixed order and short-circuit on the first failure: empty input,
// restricted terms, blacklist, character set (raw text), then length.
func (c Config) Validate(text string) Result {
	if text == "" {
		return Result{Error: ErrEmpty}
	}

	lower := strings.ToLower(text)
	norm := c.Normalize(text)

	if matchAny(lower, norm, c.RestrictedTerms) {
		return Result{Error: ErrRestrictedContent}
	}
	if matchAny(lower, norm, c.Blacklist) {
		return Result{Error: ErrInappropriate}
	}

	if !allowedPattern.MatchString(text) {
		return Result{Error: ErrInvalidCharacters}
	}

	if n := len([]rune(text)); n < c.MinLength {
		return Result{Error: ErrTooShort}
	} else if c.MaxLength > 0 && n > c.MaxLength {
		return Result{Error: ErrTooLong}
	}

	return Result{Valid: true}
}

// matchAny reports whether any term appears as a substring of either the
// lowercased raw text or its normalized form.
func matchAny(lower, norm string, terms []string) bool {
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(lower, term) || strings.Contains(norm, term) {
			return true
		}
	}
	return false
}
