package format

import (
	"reflect"
	"testing"
	"time"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{name: "fits", text: "Song Title", width: 19, want: []string{"Song Title"}},
		{name: "greedy", text: "the quick brown fox jumps", width: 10, want: []string{"the quick", "brown fox", "jumps"}},
		{name: "collapses whitespace", text: "  a \t b\n c  ", width: 10, want: []string{"a b c"}},
		{name: "long word fills line", text: "ab cdefghij", width: 5, want: []string{"ab cd", "efghi", "j"}},
		{name: "long word alone", text: "abcdefghijkl", width: 5, want: []string{"abcde", "fghij", "kl"}},
		{name: "long word after full line", text: "abcd efghijk", width: 5, want: []string{"abcd", "efghi", "jk"}},
		{name: "exact width", text: "abcde fghij", width: 5, want: []string{"abcde", "fghij"}},
		{name: "runes not bytes", text: "héllo wörld", width: 5, want: []string{"héllo", "wörld"}},
		{name: "zero width", text: "abc", width: 0, want: []string{"a", "b", "c"}},
		{name: "empty", text: "", width: 10, want: nil},
		{name: "whitespace only", text: "   ", width: 10, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.width)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Wrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrapLinesWithinWidth(t *testing.T) {
	text := "Supercalifragilisticexpialidocious and a rather long track title (Remastered 2011)"
	for _, width := range []int{1, 3, 7, 19, 23} {
		for _, line := range Wrap(text, width) {
			if n := len([]rune(line)); n > width || n == 0 {
				t.Errorf("width %d: line %q has %d runes", width, line, n)
			}
		}
	}
}

func TestUniqueStrings(t *testing.T) {
	got := UniqueStrings([]string{"streamdeck-ui", " streamdeck ", "", "streamdeck-ui", "streamdeck"})
	want := []string{"streamdeck-ui", "streamdeck"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueStrings = %q, want %q", got, want)
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "never"},
		{3 * time.Second, "just now"},
		{45 * time.Second, "45s ago"},
		{12 * time.Minute, "12m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := FormatAge(tt.d); got != tt.want {
			t.Errorf("FormatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
