package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/plife/internal/dynamo"
)

// RulesFile is the on-disk form of an interaction matrix.
type RulesFile struct {
	Colors int         `yaml:"colors"`
	Rules  [][]float64 `yaml:"rules"`
}

func LoadRules(path string) ([][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var f RulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", dynamo.ErrInvalidConfig, path, err)
	}
	if f.Colors == 0 {
		f.Colors = len(f.Rules)
	}
	if err := checkRulesShape(f.Rules, f.Colors); err != nil {
		return nil, err
	}
	return f.Rules, nil
}

func SaveRules(path string, rows [][]float64) error {
	data, err := yaml.Marshal(RulesFile{Colors: len(rows), Rules: rows})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func checkRulesShape(rows [][]float64, colors int) error {
	if colors < 1 || len(rows) != colors {
		return fmt.Errorf("%w: rules have %d rows, want %d", dynamo.ErrInvalidConfig, len(rows), colors)
	}
	for i, row := range rows {
		if len(row) != colors {
			return fmt.Errorf("%w: rules row %d has %d columns, want %d", dynamo.ErrInvalidConfig, i, len(row), colors)
		}
	}
	return nil
}
