// Package prefs persists the only local state that survives a session:
// theme and the current filter selection. Task data never lands here.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/models"
)

type Prefs struct {
	Theme  string            `yaml:"theme" json:"theme"`
	Filter models.TaskFilter `yaml:"filter" json:"filter"`
	SortBy models.SortField  `yaml:"sort_by" json:"sort_by"`
	Order  models.SortOrder  `yaml:"order" json:"order"`
}

func Default() Prefs {
	return Prefs{
		Theme:  "light",
		SortBy: models.SortByDueDate,
		Order:  models.OrderAsc,
	}
}

// Load reads prefs from path; a missing file yields defaults.
func Load(path string) (Prefs, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("read prefs: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("parse prefs: %w", err)
	}
	return p, nil
}

// Save writes prefs via a temp file so a crash mid-write cannot leave a
// truncated file behind.
func Save(path string, p Prefs) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*")
	if err != nil {
		return fmt.Errorf("create temp prefs: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close prefs: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
