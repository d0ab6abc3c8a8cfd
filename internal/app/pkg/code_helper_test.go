package pkg

import (
	"strings"
	"testing"
)

func TestGenerateClaimCode(t *testing.T) {
	seen := map[string]bool{}

	for i := 0; i < 1000; i++ {
		code, err := GenerateClaimCode()
		if err != nil {
			t.Fatalf("GenerateClaimCode() error = %v", err)
		}
		if len(code) != ClaimCodeLength {
			t.Fatalf("GenerateClaimCode() length = %d, want %d", len(code), ClaimCodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("GenerateClaimCode() = %q contains %q outside alphabet", code, r)
			}
		}
		if seen[code] {
			t.Fatalf("GenerateClaimCode() produced duplicate %q within 1000 draws", code)
		}
		seen[code] = true
	}
}

func TestNormalizeClaimCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase", in: "x7q2ab9c", want: "X7Q2AB9C"},
		{name: "surrounding whitespace", in: "  X7Q2AB9C\n", want: "X7Q2AB9C"},
		{name: "mixed case", in: "x7Q2aB9c", want: "X7Q2AB9C"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeClaimCode(tt.in); got != tt.want {
				t.Errorf("NormalizeClaimCode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
