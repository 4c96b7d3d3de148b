package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/InNoobWeTrust/web-automator/pkg/types"
	"gopkg.in/yaml.v3"
)

func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := ValidateConfigStructure(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("determining absolute path for config file %q: %w", path, err)
	}
	cfg.Dir = filepath.Dir(absPath)

	return &cfg, nil
}

// LoadInstructionsFile reads a YAML list of instructions and resolves the
// {{ name }} and {{ env.NAME }} placeholders in their string fields.
func LoadInstructionsFile(path string, vars VarContext) ([]types.Instruction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading instruction file %q: %w", path, err)
	}

	var list types.InstructionList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing instruction file %q: %w", path, err)
	}

	out := make([]types.Instruction, 0, len(list))
	for i, instr := range list {
		resolved, err := ResolveInstruction(instr, vars)
		if err != nil {
			return nil, fmt.Errorf("resolving instruction %d in %q: %w", i, path, err)
		}
		out = append(out, resolved)
	}
	return out, nil
}
