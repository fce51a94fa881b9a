package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// sseEvents parses an event-stream body into name -> data payloads,
// collecting repeated events in order.
func sseEvents(t *testing.T, body string) map[string][]string {
	t.Helper()
	events := map[string][]string{}
	var current string
	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.HasPrefix(line, "event: "):
			current = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			events[current] = append(events[current], strings.TrimPrefix(line, "data: "))
		}
	}
	return events
}

func TestAnalyzeScoresByChapterNumber(t *testing.T) {
	s := NewServer(nil)

	// One positive and one negative lexicon hit leave a base valence of
	// 1/3, small enough for the late-chapter amplification to show.
	text := "勝利の後にも不安が残る。"
	body := mustJSON(t, map[string]any{
		"manuscript": map[string]string{"chapter_1": text, "chapter_10": text},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	events := sseEvents(t, rec.Body.String())
	if len(events["chapter"]) != 2 {
		t.Fatalf("got %d chapter events, want 2", len(events["chapter"]))
	}

	base := (0.6 - 0.3) / 0.9
	want := map[string]float64{
		"chapter_1":  base * 0.8, // early-position damping
		"chapter_10": base * 1.2, // ending amplification
	}
	for _, data := range events["chapter"] {
		var ev chapterProgress
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			t.Fatalf("bad chapter event %q: %v", data, err)
		}
		if math.Abs(ev.Valence-want[ev.Chapter]) > 1e-9 {
			t.Errorf("%s valence = %v, want %v", ev.Chapter, ev.Valence, want[ev.Chapter])
		}
	}

	if len(events["suggestion"]) != 1 {
		t.Fatalf("got %d suggestion events, want 1", len(events["suggestion"]))
	}
	if len(events["done"]) != 1 {
		t.Fatalf("got %d done events, want 1", len(events["done"]))
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
