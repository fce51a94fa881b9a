package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func Load[T any](path string) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	return zero, json.NewDecoder(f).Decode(&zero)
}

// LoadYAML reads a YAML document into T.
func LoadYAML[T any](path string) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	return zero, yaml.NewDecoder(f).Decode(&zero)
}

func Save[T any](path string, v T) error {
	if strings.Contains(filepath.Clean(path), string(os.PathSeparator)) {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// SaveText writes plain text, creating parent directories as needed.
func SaveText(path, content string) error {
	if strings.Contains(filepath.Clean(path), string(os.PathSeparator)) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

type Saver[T any] struct {
	Path  string
	Value *T
}

func (s *Saver[T]) Save() error {
	return Save(s.Path, *s.Value)
}

func NewSaver[T any](path string, v *T) *Saver[T] {
	return &Saver[T]{path, v}
}

func LoadSaver[T any](path string) (*Saver[T], error) {
	v, err := Load[T](path)
	if err != nil {
		return nil, err
	}
	return &Saver[T]{Path: path, Value: &v}, nil
}
