package text_test

import (
	"slices"
	"testing"

	"github.com/edgard/plainbot/internal/text"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    text.Mode
		wantErr bool
	}{
		{"", text.ModeResponse, false},
		{"response", text.ModeResponse, false},
		{" Plain ", text.ModePlain, false},
		{"LIST", text.ModeList, false},
		{"html", "", true},
	}

	for _, tt := range tests {
		got, err := text.ParseMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		n     text.Normalizer
		input string
		want  []string
	}{
		{
			name:  "response mode",
			n:     text.Normalizer{Mode: text.ModeResponse},
			input: "# Hi\nthere",
			want:  []string{"Hi\n\nthere"},
		},
		{
			name:  "plain mode leaves prose alone",
			n:     text.Normalizer{Mode: text.ModePlain},
			input: "2 * 3 = 6",
			want:  []string{"2 * 3 = 6"},
		},
		{
			name:  "plain mode strips markdown",
			n:     text.Normalizer{Mode: text.ModePlain},
			input: "**x** y",
			want:  []string{"x y"},
		},
		{
			name:  "list mode renumbers",
			n:     text.Normalizer{Mode: text.ModeList, Renumber: true},
			input: "4. a\n9. b",
			want:  []string{"1. a\n2. b"},
		},
		{
			name:  "chunked",
			n:     text.Normalizer{Mode: text.ModeResponse, MaxLength: 5},
			input: "hello\nworld",
			want:  []string{"hello", "world"},
		},
		{
			name:  "empty input",
			n:     text.Normalizer{Mode: text.ModeResponse},
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.n.Normalize(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
