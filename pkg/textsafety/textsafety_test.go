package textsafety

import (
	"testing"
	"unicode/utf8"
)

// testConfig uses a small fixed blacklist so tests are independent of the
// shipped default lists.
var testConfig = Config{
	MinLength:       3,
	MaxLength:       20,
	RestrictedTerms: []string{"allah", "quran"},
	Blacklist:       []string{"admin", "idiot"},
	LeetMap:         DefaultLeetMap,
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello", "hello"},
		{"adm1n", "admin"},
		{"4dm!n", "admin"},
		{"a_d_m_i_n", "admin"},
		{"a.d.m.i.n", "admin"},
		{"ADM1N_99", "admin99"},
		{"hellllo", "hello"},                // 3+ run collapses to 2
		{"bookkeeper", "bookkeeper"},        // doubles survive
		{"he☺llo world", "helloworld"},      // emoji and space stripped
		{"$5s", "ss"},                       // leet first, then the run collapses
		{"", ""},
	}

	for _, tt := range tests {
		if got := testConfig.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateAccepts(t *testing.T) {
	for _, name := range []string{"ayse_99", "Mehmet", "user_123", "abc"} {
		if res := testConfig.Validate(name); !res.Valid {
			t.Errorf("Validate(%q) rejected: %s", name, res.Error)
		}
	}
}

func TestValidateRejectsEmpty(t *testing.T) {
	res := testConfig.Validate("")
	if res.Valid || res.Error != ErrEmpty {
		t.Errorf("empty input: %+v", res)
	}
}

// Leetspeak and separator variants of a blacklisted word must be rejected
// identically to the plain word.
func TestValidateNormalizesBeforeMatching(t *testing.T) {
	for _, name := range []string{"admin", "adm1n", "a_d_m_i_n", "ADMIN", "4dm!n"} {
		res := testConfig.Validate(name)
		if res.Valid {
			t.Errorf("Validate(%q) accepted a blacklist variant", name)
			continue
		}
		if res.Error != ErrInappropriate {
			t.Errorf("Validate(%q) error = %q, want %q", name, res.Error, ErrInappropriate)
		}
	}
}

func TestValidateRestrictedTermsCheckedFirst(t *testing.T) {
	// "allah" is restricted; even combined with a blacklisted token the
	// restricted error wins because that check runs first.
	res := testConfig.Validate("allah_admin")
	if res.Valid || res.Error != ErrRestrictedContent {
		t.Errorf("restricted term: %+v", res)
	}

	res = testConfig.Validate("Qur4n")
	if res.Valid || res.Error != ErrRestrictedContent {
		t.Errorf("leetspeak restricted term: %+v", res)
	}
}

// The character gate runs on the raw input, so a symbol that normalization
// would strip still fails the check.
func TestValidateCharacterGateUsesRawText(t *testing.T) {
	res := testConfig.Validate("user!name")
	if res.Valid {
		t.Fatal("Validate accepted raw text with disallowed symbol")
	}
	if res.Error != ErrInvalidCharacters {
		t.Errorf("error = %q, want %q", res.Error, ErrInvalidCharacters)
	}
}

func TestValidateLength(t *testing.T) {
	if res := testConfig.Validate("ab"); res.Valid || res.Error != ErrTooShort {
		t.Errorf("short input: %+v", res)
	}
	if res := testConfig.Validate("abcdefghijklmnopqrstu"); res.Valid || res.Error != ErrTooLong {
		t.Errorf("long input: %+v", res)
	}
}

// Substring matching is intentional: innocent words containing a
// blacklisted token are rejected (Scunthorpe behavior, documented).
func TestValidateSubstringMatchIsIntentional(t *testing.T) {
	res := testConfig.Validate("administrator")
	if res.Valid {
		t.Error("substring match expected to reject 'administrator'")
	}
}

// An empty config must not crash; it degrades to charset + length checks.
func TestValidateEmptyConfigDegrades(t *testing.T) {
	var cfg Config

	if res := cfg.Validate("admin"); !res.Valid {
		t.Errorf("empty config rejected clean charset input: %+v", res)
	}
	if res := cfg.Validate("user name"); res.Valid || res.Error != ErrInvalidCharacters {
		t.Errorf("empty config charset gate: %+v", res)
	}
}

func TestCensorReplacesExactMatches(t *testing.T) {
	got := testConfig.Censor("you are an IDIOT, admin")
	want := "you are an *****, *****"
	if got != want {
		t.Errorf("Censor = %q, want %q", got, want)
	}
}

// Censoring runs on raw text only: the leetspeak variant passes through
// while the exact word is masked. This asymmetry with Validate is by
// design, not a bug to fix.
func TestCensorDoesNotNormalize(t *testing.T) {
	if got := testConfig.Censor("4dmin"); got != "4dmin" {
		t.Errorf("Censor normalized obfuscated text: %q", got)
	}
	if got := testConfig.Censor("admin"); got != "*****" {
		t.Errorf("Censor(%q) = %q", "admin", got)
	}
}

func TestCensorPreservesSurroundingText(t *testing.T) {
	got := testConfig.Censor("adminadmin ok")
	if got != "********** ok" {
		t.Errorf("Censor back-to-back matches = %q", got)
	}
}

// Lowercasing Turkish İ (U+0130) grows it by a byte, so match offsets in
// the lowered text drift from the original. Masking must stay on rune
// boundaries of the original string regardless.
func TestCensorMultiByteText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"İİİidiot", "İİİ*****"},
		{"İİİİİİidiot", "İİİİİİ*****"},
		{"şu adminler", "şu *****ler"},
		{"IDIOTça", "*****ça"},
		{"çğüşöİ", "çğüşöİ"},
	}

	for _, c := range cases {
		got := testConfig.Censor(c.in)
		if got != c.want {
			t.Errorf("Censor(%q) = %q, want %q", c.in, got, c.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("Censor(%q) produced invalid UTF-8: %q", c.in, got)
		}
	}
}

func TestDefaultConfigPolicy(t *testing.T) {
	cfg := DefaultConfig()

	if res := cfg.Validate("mehmet_2026"); !res.Valid {
		t.Errorf("default config rejected a clean username: %+v", res)
	}
	if res := cfg.Validate("allah123"); res.Valid || res.Error != ErrRestrictedContent {
		t.Errorf("default config restricted term: %+v", res)
	}
	if res := cfg.Validate("0rospu"); res.Valid || res.Error != ErrInappropriate {
		t.Errorf("default config leetspeak profanity: %+v", res)
	}
}
