package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type payload struct {
	Name  string   `json:"name"`
	Score float64  `json:"score"`
	Tags  []string `json:"tags"`
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "payload.json")
	want := payload{Name: "帝国の黄昏", Score: 0.92, Tags: []string{"fantasy", "tragedy"}}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load[payload](path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", d)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load[payload](filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("Load of a missing file succeeded")
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	if err := os.WriteFile(path, []byte("name: 試練\nscore: 0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadYAML[struct {
		Name  string  `yaml:"name"`
		Score float64 `yaml:"score"`
	}](path)
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if got.Name != "試練" || got.Score != 0.5 {
		t.Errorf("LoadYAML = %+v", got)
	}
}

func TestSaveText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "novel.txt")
	if err := SaveText(path, "第一章"); err != nil {
		t.Fatalf("SaveText: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "第一章" {
		t.Errorf("SaveText wrote %q", b)
	}
}

func TestExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marker")
	if Exists(path) {
		t.Error("Exists reported a missing file")
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !Exists(path) {
		t.Error("Exists missed a present file")
	}
}
