package textsafety

import (
	"strings"
	"unicode/utf8"
)

// Censor replaces every case-insensitive occurrence of a restricted or
// blacklisted term in the raw text with asterisks of equal length.
//
// Unlike Validate, no normalization pass runs here: obfuscated profanity
// ("4dmin" for "admin") slips through. That is the accepted tradeoff for
// in-context chat censoring: rewriting a message around stripped
// separators would mangle legitimate text, and precision matters more than
// recall once the strict validator has already gated identity fields.
func (c Config) Censor(text string) string {
	out := text
	for _, term := range c.RestrictedTerms {
		out = censorTerm(out, term)
	}
	for _, term := range c.Blacklist {
		out = censorTerm(out, term)
	}
	return out
}

func censorTerm(text, term string) string {
	if term == "" {
		return text
	}

	lowerTerm := strings.ToLower(term)

	// Lowercasing can change byte lengths (Turkish İ gains a combining
	// mark), so matches found in the lowered text must be mapped back to
	// rune boundaries of the original before slicing. offsets[k] holds
	// the original offset of the rune that produced lowered byte k.
	var lower []byte
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		low := strings.ToLower(string(r))
		for j := 0; j < len(low); j++ {
			offsets = append(offsets, i)
		}
		lower = append(lower, low...)
	}
	offsets = append(offsets, len(text))
	lowered := string(lower)

	var b strings.Builder
	from := 0
	last := 0
	for {
		idx := strings.Index(lowered[from:], lowerTerm)
		if idx < 0 {
			break
		}
		idx += from

		start := offsets[idx]
		end := offsets[idx+len(lowerTerm)]
		if start < last {
			start = last
		}
		b.WriteString(text[last:start])
		b.WriteString(strings.Repeat("*", utf8.RuneCountInString(text[start:end])))
		last = end
		from = idx + len(lowerTerm)
	}
	b.WriteString(text[last:])
	return b.String()
}
