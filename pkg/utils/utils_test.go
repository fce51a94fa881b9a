package utils

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"同じ", "同じ", 0},
		{"皇帝", "皇后", 1},
	}
	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("", ""); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Similarity of empties = %v, want 1", got)
	}
	if got := Similarity("Hello", "hello "); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Similarity should normalize case and space, got %v", got)
	}
	if got := Similarity("abcd", "abXd"); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("Similarity = %v, want 0.75", got)
	}
}

func TestLimitStr(t *testing.T) {
	if got := LimitStr("short", 10); got != "short" {
		t.Errorf("LimitStr left %q", got)
	}
	// Truncation lands on a rune boundary, never inside a multibyte char.
	got := LimitStr("皇帝の没落と贖罪", 4)
	if got != "皇帝の没..." {
		t.Errorf("LimitStr = %q, want 4 runes plus ellipsis", got)
	}
}

func TestChunkText(t *testing.T) {
	if got := ChunkText("", 10); got != nil {
		t.Errorf("ChunkText of empty = %v, want nil", got)
	}
	if got := ChunkText("fits", 10); len(got) != 1 || got[0] != "fits" {
		t.Errorf("ChunkText of fitting text = %v", got)
	}

	text := "first paragraph here\n\nsecond paragraph here\n\nthird one"
	chunks := ChunkText(text, 45)
	if len(chunks) < 2 {
		t.Fatalf("expected a split, got %v", chunks)
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > 45 {
			t.Errorf("chunk %d has %d runes, over the limit", i, n)
		}
	}
	joined := strings.Join(chunks, "\n\n")
	if !strings.Contains(joined, "second paragraph here") {
		t.Error("content lost while chunking")
	}
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain passes through", `{"a":1}`, `{"a":1}`},
		{"fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding space", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJSON(tt.in); got != tt.want {
				t.Errorf("CleanJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename(`a/b\c:d`); got != "a_b_c_d" {
		t.Errorf("SanitizeFilename = %q", got)
	}
}

func TestSyncMap(t *testing.T) {
	m := NewSyncMap[map[string]int]()
	if _, ok := m.Load("missing"); ok {
		t.Error("Load of missing key reported ok")
	}
	m.Store("a", 1)
	if v, ok := m.Load("a"); !ok || v != 1 {
		t.Errorf("Load(a) = %v, %v", v, ok)
	}
	m.Delete("a")
	if _, ok := m.Load("a"); ok {
		t.Error("Delete left the key behind")
	}
}

func TestTokenizeWords(t *testing.T) {
	got := TokenizeWords("hello, world")
	want := []string{"hello", ",", " ", "world"}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("TokenizeWords mismatch (-want +got):\n%s", d)
	}
}

func TestWordDeltaRoundTrip(t *testing.T) {
	deltas := DiffWords("the old line", "the new line")
	var hasDelete, hasInsert bool
	for _, d := range deltas {
		switch {
		case d.Op < 0 && d.Text == "old":
			hasDelete = true
		case d.Op > 0 && d.Text == "new":
			hasInsert = true
		}
	}
	if !hasDelete || !hasInsert {
		t.Errorf("DiffWords missed the edit: %+v", deltas)
	}
}

func TestCountTokens(t *testing.T) {
	short, err := CountTokens("hello world")
	if err != nil {
		t.Skipf("tokenizer unavailable: %v", err)
	}
	if short <= 0 {
		t.Errorf("CountTokens(hello world) = %d, want > 0", short)
	}
	long, err := CountTokens(strings.Repeat("hello world ", 50))
	if err != nil {
		t.Fatal(err)
	}
	if long <= short {
		t.Errorf("longer text counted %d tokens, shorter %d", long, short)
	}
}
