package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  Markets   rally  ", "Markets rally"},
		{"tags", "<p>Shares <b>rose</b> 3%</p>", "Shares rose 3%"},
		{"entities", "AT&amp;T beats estimates", "AT&T beats estimates"},
		{"script dropped", "<div>Hello<script>alert(1)</script> world</div>", "Hello world"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkup(tt.in))
		})
	}
}

func TestSanitizeQuery(t *testing.T) {
	assert.Equal(t, "stock market OR economy", SanitizeQuery(`"stock market" OR (economy)`))
	assert.Equal(t, "ASML Holding", SanitizeQuery("ASML-Holding"))
}

func TestIsPlaceholderTitle(t *testing.T) {
	assert.True(t, IsPlaceholderTitle(""))
	assert.True(t, IsPlaceholderTitle("   "))
	assert.True(t, IsPlaceholderTitle("No title"))
	assert.True(t, IsPlaceholderTitle("NO TITLE"))
	assert.False(t, IsPlaceholderTitle("No title change at Fed"))
}

func TestEnsureTerminalPunctuation(t *testing.T) {
	assert.Equal(t, "Stocks rose.", EnsureTerminalPunctuation("Stocks rose"))
	assert.Equal(t, "Stocks rose!", EnsureTerminalPunctuation("Stocks rose!"))
	assert.Equal(t, "Why?", EnsureTerminalPunctuation(" Why? "))
	assert.Equal(t, "", EnsureTerminalPunctuation(""))
}

func TestTruncateWords(t *testing.T) {
	long := strings.Repeat("word ", 30)
	got := TruncateWords(long, 25)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Len(t, strings.Fields(strings.TrimSuffix(got, "...")), 25)

	assert.Equal(t, "short text", TruncateWords("short   text", 25))
}
