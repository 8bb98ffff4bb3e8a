// Package scenario loads provenance scenarios from TOML files, replays them
// against fresh trackers and checks the expectations they declare.
//
//	name = "self copy"
//
//	[[tracker]]
//	name = "src"
//	kind = "origin"
//
//	[[tracker]]
//	name = "out"
//	kind = "default"
//
//	[[op]]
//	do = "set_source"
//	target = "out"
//	index = 5
//	length = 5
//	source = "src"
//	source_index = 105
//
//	[[expect]]
//	tracker = "out"
//	regions = ["gap 5", "part 5 src@105"]
package scenario

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

var (
	// ErrNoTrackers indicates that a scenario declares no [[tracker]].
	ErrNoTrackers = errors.New("missing [[tracker]]")
	// ErrUnknownTracker indicates a reference to an undeclared tracker.
	ErrUnknownTracker = errors.New("unknown tracker")
)

// Tracker kinds.
const (
	KindOrigin  = "origin"
	KindDefault = "default"
	KindTag     = "tag"
)

// Operations.
const (
	OpAppend    = "append"
	OpSetSource = "set_source"
	OpClear     = "clear"
	OpTwin      = "twin"
)

// Scenario is a parsed scenario file.
type Scenario struct {
	Name        string        `toml:"name"`
	Description string        `toml:"description"`
	Trackers    []TrackerDecl `toml:"tracker"`
	Ops         []Op          `toml:"op"`
	Expects     []Expect      `toml:"expect"`

	Path string `toml:"-"`
}

// TrackerDecl declares a tracker. Content is appended right after creation.
type TrackerDecl struct {
	Name    string `toml:"name"`
	Kind    string `toml:"kind"`
	Label   string `toml:"label"`
	Chars   bool   `toml:"chars"`
	Content string `toml:"content"`
}

// Op is one step of a scenario.
type Op struct {
	Do          string `toml:"do"`
	Target      string `toml:"target"`
	Index       int    `toml:"index"`
	Length      int    `toml:"length"`
	Source      string `toml:"source"`
	SourceIndex int    `toml:"source_index"`
	Growth      string `toml:"growth"`
	Content     string `toml:"content"`
	Other       string `toml:"other"`
	// Error is the expected failure: "unsupported" or "invalid_argument".
	Error string `toml:"error"`
}

// Expect is a check run after all operations.
type Expect struct {
	Tracker  string   `toml:"tracker"`
	Range    []int    `toml:"range"` // [index, length], whole tracker when empty
	Simplify bool     `toml:"simplify"`
	Regions  []string `toml:"regions"`
	Length   *int     `toml:"length"`
	Markers  []string `toml:"markers"`
}

// Load reads and validates the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc.Path = path
	return sc, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	meta, err := toml.Decode(string(data), &sc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if !meta.IsDefined("tracker") || len(sc.Trackers) == 0 {
		return nil, ErrNoTrackers
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	kinds := make(map[string]string, len(sc.Trackers))
	for i, d := range sc.Trackers {
		if d.Name == "" {
			return fmt.Errorf("tracker %d: missing name", i)
		}
		if _, dup := kinds[d.Name]; dup {
			return fmt.Errorf("tracker %q declared twice", d.Name)
		}
		switch d.Kind {
		case KindOrigin, KindDefault:
		case KindTag:
			if d.Content != "" {
				return fmt.Errorf("tracker %q: tags have no content", d.Name)
			}
		default:
			return fmt.Errorf("tracker %q: invalid kind %q (expected: origin|default|tag)", d.Name, d.Kind)
		}
		kinds[d.Name] = d.Kind
	}

	known := func(ctx, name string) error {
		if _, ok := kinds[name]; !ok {
			return fmt.Errorf("%s: %w %q", ctx, ErrUnknownTracker, name)
		}
		return nil
	}
	for i, op := range sc.Ops {
		ctx := fmt.Sprintf("op %d (%s)", i, op.Do)
		if err := known(ctx, op.Target); err != nil {
			return err
		}
		switch op.Do {
		case OpAppend, OpClear:
		case OpSetSource:
			if err := known(ctx, op.Source); err != nil {
				return err
			}
			if _, err := ParseGrowth(op.Growth); err != nil {
				return fmt.Errorf("%s: %w", ctx, err)
			}
		case OpTwin:
			if err := known(ctx, op.Other); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s: invalid operation (expected: append|set_source|clear|twin)", ctx)
		}
		switch op.Error {
		case "", "unsupported", "invalid_argument":
		default:
			return fmt.Errorf("%s: invalid expected error %q (expected: unsupported|invalid_argument)", ctx, op.Error)
		}
	}

	for i, ex := range sc.Expects {
		ctx := fmt.Sprintf("expect %d", i)
		if err := known(ctx, ex.Tracker); err != nil {
			return err
		}
		if len(ex.Range) != 0 && len(ex.Range) != 2 {
			return fmt.Errorf("%s: range must be [index, length]", ctx)
		}
		for _, r := range ex.Regions {
			spec, err := ParseRegion(r)
			if err != nil {
				return fmt.Errorf("%s: %w", ctx, err)
			}
			if !spec.Gap {
				if err := known(ctx, spec.Source); err != nil {
					return err
				}
			}
		}
		for _, m := range ex.Markers {
			spec, err := ParseMarker(m)
			if err != nil {
				return fmt.Errorf("%s: %w", ctx, err)
			}
			if err := known(ctx, spec.To); err != nil {
				return err
			}
		}
	}
	return nil
}
