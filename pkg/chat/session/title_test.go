package session

import (
	"strings"
	"testing"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name             string
		explicit         string
		firstUserMessage string
		want             string
	}{
		{
			name:             "explicit title wins",
			explicit:         "Trip Planning",
			firstUserMessage: "Where should I go in October?",
			want:             "Trip Planning",
		},
		{
			name:             "whitespace explicit title is ignored",
			explicit:         "   ",
			firstUserMessage: "Where should I go in October?",
			want:             "Where should I go in October?",
		},
		{
			name:             "short message used as-is",
			explicit:         "",
			firstUserMessage: "Hello there",
			want:             "Hello there",
		},
		{
			name:             "exactly 50 characters is not truncated",
			explicit:         "",
			firstUserMessage: strings.Repeat("a", 50),
			want:             strings.Repeat("a", 50),
		},
		{
			name:             "51 characters truncates to 47 plus ellipsis",
			explicit:         "",
			firstUserMessage: strings.Repeat("a", 51),
			want:             strings.Repeat("a", 47) + "...",
		},
		{
			name:             "no title and no message falls back",
			explicit:         "",
			firstUserMessage: "",
			want:             DefaultTitle,
		},
		{
			name:             "whitespace-only message falls back",
			explicit:         "",
			firstUserMessage: "  \n ",
			want:             DefaultTitle,
		},
		{
			name:             "multibyte runes count as single characters",
			explicit:         "",
			firstUserMessage: strings.Repeat("ü", 51),
			want:             strings.Repeat("ü", 47) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTitle(tt.explicit, tt.firstUserMessage)
			if got != tt.want {
				t.Errorf("DeriveTitle(%q, %q) = %q, want %q", tt.explicit, tt.firstUserMessage, got, tt.want)
			}
		})
	}
}
