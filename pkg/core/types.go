package core

import "github.com/InNoobWeTrust/web-automator/pkg/types"

type LoopRange = types.LoopRange

// Config is the top-level automation config file.
type Config struct {
	Domains map[string]DomainConfig `yaml:"domains"`

	// Dir is the directory of the file the config was loaded from. Relative
	// paths inside the config resolve against it.
	Dir string `yaml:"-"`
}

// DomainConfig binds a bare host name to its instructions.
type DomainConfig struct {
	Instructions string      `yaml:"instructions"`
	SkipElements []string    `yaml:"skip_elements,omitempty"`
	LoopConfig   []LoopRange `yaml:"loop_config,omitempty"`
	CookieFile   string      `yaml:"cookie_file,omitempty"`
}

// DomainBinding is a DomainConfig with its file paths made absolute.
type DomainBinding struct {
	Domain          string
	InstructionFile string
	SkipElements    []string
	Loops           []LoopRange
	// CookieFile is empty when the domain does not configure one.
	CookieFile string
}
