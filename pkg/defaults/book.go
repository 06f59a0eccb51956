package defaults

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sprout/entities"
)

// WaterRec is always exactly one amount+unit pair.
type WaterRec struct {
	Amount float64 `yaml:"amount" json:"amount"`
	Unit   string  `yaml:"unit" json:"unit"`
}

type FertRec struct {
	Products []entities.FertilizerProduct `yaml:"products" json:"products"`
}

// StageRec is the category book's guidance for one (category, stage) cell.
type StageRec struct {
	Watering    *WaterRec `yaml:"watering,omitempty"`
	Fertilizing *FertRec  `yaml:"fertilizing,omitempty"`
}

// Book holds the category-general tier plus the universal fallback,
// loaded from a YAML file authored alongside the variety data.
type Book struct {
	Categories map[string]map[string]StageRec `yaml:"categories"`
	Universal  StageRec                       `yaml:"universal"`
}

// builtinUniversal backs the low-confidence tier when the book file is
// missing or names no universal section.
var builtinUniversal = StageRec{
	Watering: &WaterRec{Amount: 0.25, Unit: "gal"},
	Fertilizing: &FertRec{Products: []entities.FertilizerProduct{{
		Product:  "Balanced liquid fertilizer 10-10-10",
		Dilution: "half strength",
		Method:   "soil-drench",
	}}},
}

// LoadBook reads the category-defaults file. A missing file is not an
// error: the resolver still works from the built-in universal tier.
func LoadBook(path string) (*Book, error) {
	b := &Book{Categories: map[string]map[string]StageRec{}}
	if path == "" {
		b.Universal = builtinUniversal
		return b, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			b.Universal = builtinUniversal
			return b, nil
		}
		return nil, fmt.Errorf("read category defaults: %w", err)
	}
	if err := yaml.Unmarshal(raw, b); err != nil {
		return nil, fmt.Errorf("parse category defaults: %w", err)
	}
	if b.Categories == nil {
		b.Categories = map[string]map[string]StageRec{}
	}
	if b.Universal.Watering == nil {
		b.Universal.Watering = builtinUniversal.Watering
	}
	if b.Universal.Fertilizing == nil {
		b.Universal.Fertilizing = builtinUniversal.Fertilizing
	}
	return b, nil
}

// categoryRec looks up the category-general tier for (category, stage).
func (b *Book) categoryRec(category, stage string) (StageRec, bool) {
	stages, ok := b.Categories[category]
	if !ok {
		return StageRec{}, false
	}
	rec, ok := stages[stage]
	return rec, ok
}
