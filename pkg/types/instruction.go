package types

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Action names as they appear under the `action` key of an instruction file.
const (
	ActionNavigate    = "navigate"
	ActionClick       = "click"
	ActionWait        = "wait"
	ActionScroll      = "scroll"
	ActionRandomClick = "random_click"
)

const (
	DefaultLookupTimeout = 10 * time.Second
	DefaultScrollAmount  = 100
)

// By is the strategy used to resolve a selector.
type By string

const (
	ByCSS   By = "css"
	ByID    By = "id"
	ByXPath By = "xpath"
)

// Valid reports whether b is empty (meaning css) or one of the known strategies.
func (b By) Valid() bool {
	switch b {
	case "", ByCSS, ByID, ByXPath:
		return true
	}
	return false
}

// OrDefault returns css when no strategy was given.
func (b By) OrDefault() By {
	if b == "" {
		return ByCSS
	}
	return b
}

// Instruction is one action of a domain's instruction file. The set of
// implementations is closed: Navigate, Click, Wait, Scroll and RandomClick.
type Instruction interface {
	Action() string
	isInstruction()
}

// Navigate loads url in the session. A failed critical navigation aborts the run.
type Navigate struct {
	URL      string `yaml:"url"`
	Critical bool   `yaml:"critical,omitempty"`
}

// Click clicks the first element matching Selector.
type Click struct {
	Selector     string   `yaml:"selector"`
	By           By       `yaml:"by,omitempty"`
	Timeout      *int     `yaml:"timeout,omitempty"`
	Delay        *float64 `yaml:"delay,omitempty"`
	DelayStdev   *float64 `yaml:"delay_stdev,omitempty"`
	IgnoreErrors bool     `yaml:"ignore_errors,omitempty"`
}

// Wait sleeps for Seconds, jittered when Stdev is set.
type Wait struct {
	Seconds float64  `yaml:"seconds"`
	Stdev   *float64 `yaml:"stdev,omitempty"`
}

// Scroll scrolls the window vertically by Amount pixels.
type Scroll struct {
	Amount *int `yaml:"amount,omitempty"`
}

// RandomClick clicks a random element among those matching Selector,
// optionally until none are left.
type RandomClick struct {
	Selector    string   `yaml:"selector"`
	By          By       `yaml:"by,omitempty"`
	ExcludeText []string `yaml:"exclude_text,omitempty"`
	Timeout     *int     `yaml:"timeout,omitempty"`
	Exhaustive  bool     `yaml:"exhaustive,omitempty"`
	Delay       *float64 `yaml:"delay,omitempty"`
	DelayStdev  *float64 `yaml:"delay_stdev,omitempty"`
}

func (Navigate) Action() string    { return ActionNavigate }
func (Click) Action() string       { return ActionClick }
func (Wait) Action() string        { return ActionWait }
func (Scroll) Action() string      { return ActionScroll }
func (RandomClick) Action() string { return ActionRandomClick }

func (Navigate) isInstruction()    {}
func (Click) isInstruction()       {}
func (Wait) isInstruction()        {}
func (Scroll) isInstruction()      {}
func (RandomClick) isInstruction() {}

// LookupTimeout returns the configured timeout or the 10 second default.
func (c Click) LookupTimeout() time.Duration { return lookupTimeout(c.Timeout) }

// LookupTimeout returns the configured timeout or the 10 second default.
func (r RandomClick) LookupTimeout() time.Duration { return lookupTimeout(r.Timeout) }

// Pixels returns the scroll amount, 100 when unset.
func (s Scroll) Pixels() int {
	if s.Amount == nil {
		return DefaultScrollAmount
	}
	return *s.Amount
}

func lookupTimeout(seconds *int) time.Duration {
	if seconds == nil {
		return DefaultLookupTimeout
	}
	return time.Duration(*seconds) * time.Second
}

// InstructionList decodes a YAML sequence of instructions tagged by `action`.
type InstructionList []Instruction

func (l *InstructionList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: instructions must be a list", node.Line)
	}

	out := make(InstructionList, 0, len(node.Content))
	for i, item := range node.Content {
		instr, err := decodeInstruction(item)
		if err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
		out = append(out, instr)
	}
	*l = out
	return nil
}

func decodeInstruction(node *yaml.Node) (Instruction, error) {
	var header struct {
		Action string `yaml:"action"`
	}
	if err := node.Decode(&header); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}

	switch header.Action {
	case ActionNavigate:
		var n Navigate
		if err := node.Decode(&n); err != nil {
			return nil, err
		}
		if n.URL == "" {
			return nil, fmt.Errorf("line %d: navigate must define 'url'", node.Line)
		}
		return n, nil
	case ActionClick:
		var c Click
		if err := node.Decode(&c); err != nil {
			return nil, err
		}
		if err := checkLocator(node.Line, c.Selector, c.By, c.Timeout); err != nil {
			return nil, fmt.Errorf("click %w", err)
		}
		return c, nil
	case ActionWait:
		var w Wait
		if err := node.Decode(&w); err != nil {
			return nil, err
		}
		return w, nil
	case ActionScroll:
		var s Scroll
		if err := node.Decode(&s); err != nil {
			return nil, err
		}
		return s, nil
	case ActionRandomClick:
		var r RandomClick
		if err := node.Decode(&r); err != nil {
			return nil, err
		}
		if err := checkLocator(node.Line, r.Selector, r.By, r.Timeout); err != nil {
			return nil, fmt.Errorf("random_click %w", err)
		}
		return r, nil
	case "":
		return nil, fmt.Errorf("line %d: missing 'action'", node.Line)
	default:
		return nil, fmt.Errorf("line %d: %w %q", node.Line, ErrUnknownInstruction, header.Action)
	}
}

func checkLocator(line int, selector string, by By, timeout *int) error {
	if selector == "" {
		return fmt.Errorf("at line %d must define 'selector'", line)
	}
	if !by.Valid() {
		return fmt.Errorf("at line %d has unsupported 'by' %q (use css, id or xpath)", line, by)
	}
	if timeout != nil && *timeout < 0 {
		return fmt.Errorf("at line %d has negative 'timeout'", line)
	}
	return nil
}
