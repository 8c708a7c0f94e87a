package excerpt

import (
	"strings"
	"testing"
)

func TestReadingMinutes(t *testing.T) {
	tests := []struct {
		name  string
		words int
		want  int
	}{
		{"empty", 0, 0},
		{"one word", 1, 1},
		{"exactly one minute", 200, 1},
		{"just over", 201, 2},
		{"long post", 1000, 5},
	}
	for _, tt := range tests {
		text := strings.TrimSpace(strings.Repeat("word ", tt.words))
		if got := ReadingMinutes(text); got != tt.want {
			t.Errorf("%s: expected %d minutes, got %d", tt.name, tt.want, got)
		}
	}
}

func TestSummarize_ShortTextUnchanged(t *testing.T) {
	in := "A short   post\nabout agents."
	if got := Summarize(in, 50); got != "A short post about agents." {
		t.Errorf("expected whitespace-normalized text, got %q", got)
	}
}

func TestSummarize_StopsAtSentenceBoundary(t *testing.T) {
	in := "First sentence here. Second sentence is a bit longer. Third one never fits in the budget at all."
	got := Summarize(in, 9)
	want := "First sentence here. Second sentence is a bit longer."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSummarize_CutsLongFirstSentence(t *testing.T) {
	in := strings.Repeat("word ", 30) + "end."
	got := Summarize(in, 5)
	if got != "word word word word word…" {
		t.Errorf("unexpected cut: %q", got)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if got := Summarize("   ", 10); got != "" {
		t.Errorf("expected empty summary, got %q", got)
	}
	if got := Summarize("text", 0); got != "" {
		t.Errorf("expected empty summary for zero budget, got %q", got)
	}
}
