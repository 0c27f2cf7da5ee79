package services

import (
	"testing"

	"github.com/kalimapp/kalima-backend/pkg/textsafety"
)

func TestValidateUsernamePolicy(t *testing.T) {
	cases := []struct {
		username string
		valid    bool
	}{
		{"ahmet_42", true},
		{"learner", true},
		{"", false},
		{"ab", false},
		{"kuran_fan", false},
		{"4ll4h", false},
		{"user name", false},
	}

	for _, c := range cases {
		res := ValidateUsername(c.username)
		if res.Valid != c.valid {
			t.Errorf("ValidateUsername(%q).Valid = %v, want %v (error %q)", c.username, res.Valid, c.valid, res.Error)
		}
	}
}

func TestChatTextFlagged(t *testing.T) {
	if ChatTextFlagged("merhaba nasılsın") {
		t.Error("plain greeting should not be flagged")
	}
	// Free chat fails the username charset rule but that alone is not a
	// moderation hit.
	if ChatTextFlagged("how do I read this letter?") {
		t.Error("charset and length failures must not flag chat text")
	}
	if !ChatTextFlagged("you are a d1ckhead") {
		t.Error("obfuscated profanity should be flagged")
	}
}

func TestCensorChatText(t *testing.T) {
	got := CensorChatText("don't be a dickhead please")
	want := "don't be a ****head please"
	if got != want {
		t.Errorf("CensorChatText = %q, want %q", got, want)
	}
}

func TestSetSafetyConfig(t *testing.T) {
	original := SafetyConfig()
	defer SetSafetyConfig(original)

	custom := textsafety.Config{
		MinLength: 1,
		MaxLength: 10,
		Blacklist: []string{"zonk"},
		LeetMap:   textsafety.DefaultLeetMap,
	}
	SetSafetyConfig(custom)

	if res := ValidateUsername("zonk"); res.Valid {
		t.Error("custom blacklist should reject the term")
	}
	if res := ValidateUsername("ok"); !res.Valid {
		t.Errorf("custom min length should allow short names, got %q", res.Error)
	}
}
