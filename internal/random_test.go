package internal

import (
	"regexp"
	"strings"
	"testing"
)

var tokenPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

func TestNewTokenShape(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 128; i++ {
		token, err := NewToken()
		if err != nil {
			t.Fatalf("NewToken error: %v", err)
		}
		if !tokenPattern.MatchString(token) {
			t.Fatalf("unexpected token format: %q", token)
		}
		if !ValidToken(token) {
			t.Fatalf("ValidToken rejected generated token %q", token)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = struct{}{}
	}
}

func TestValidTokenRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"abc",
		strings.Repeat("a", 63),
		strings.Repeat("a", 65),
		strings.Repeat("A", 64),
		strings.Repeat("g", 64),
		strings.Repeat("a", 63) + " ",
		strings.Repeat("a", 63) + "\n",
	}
	for _, tc := range cases {
		if ValidToken(tc) {
			t.Fatalf("expected %q to be rejected", tc)
		}
	}
}

// FuzzValidToken checks the hand-written shape check against the regexp form.
func FuzzValidToken(f *testing.F) {
	f.Add("")
	f.Add(strings.Repeat("0", 64))
	f.Add(strings.Repeat("F", 64))
	f.Add("!!!not-hex!!!")

	f.Fuzz(func(t *testing.T, input string) {
		if got, want := ValidToken(input), tokenPattern.MatchString(input); got != want {
			t.Fatalf("ValidToken(%q) = %v, regexp = %v", input, got, want)
		}
	})
}
