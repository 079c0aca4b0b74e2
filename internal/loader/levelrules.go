package loader

import (
	"fmt"
	"strconv"
	"strings"
)

// NameRule assigns Depth to rows whose name contains any of Substrings.
type NameRule struct {
	Substrings []string `yaml:"substrings"`
	Depth      int      `yaml:"depth"`
}

// IDRule assigns Depth to the listed ids.
type IDRule struct {
	IDs   []string `yaml:"ids,omitempty"`
	Depth int      `yaml:"depth"`
}

// RangeRule assigns Depth to numeric ids in [From, To].
type RangeRule struct {
	From  int `yaml:"from"`
	To    int `yaml:"to"`
	Depth int `yaml:"depth"`
}

// LevelRules assigns depths to rows whose source carries no indentation. They
// are project data: each plan needs its own. Rules are tried in field order and
// the first match wins.
type LevelRules struct {
	RootIDs []string    `yaml:"root_ids,omitempty"`
	Names   []NameRule  `yaml:"names,omitempty"`
	IDs     []IDRule    `yaml:"ids,omitempty"`
	Ranges  []RangeRule `yaml:"ranges,omitempty"`
	Default int         `yaml:"default"`
}

// DepthFor returns the depth for a row.
func (r LevelRules) DepthFor(id, name string) int {
	for _, root := range r.RootIDs {
		if root == id {
			return 0
		}
	}
	for _, rule := range r.Names {
		for _, s := range rule.Substrings {
			if s != "" && strings.Contains(name, s) {
				return rule.Depth
			}
		}
	}
	for _, rule := range r.IDs {
		for _, candidate := range rule.IDs {
			if candidate == id {
				return rule.Depth
			}
		}
	}
	if n, err := strconv.Atoi(id); err == nil {
		for _, rule := range r.Ranges {
			if n >= rule.From && n <= rule.To {
				return rule.Depth
			}
		}
	}
	return r.Default
}

// Validate rejects negative depths and inverted ranges.
func (r LevelRules) Validate() error {
	if r.Default < 0 {
		return fmt.Errorf("levels.default must be >= 0")
	}
	for _, rule := range r.Names {
		if rule.Depth < 0 {
			return fmt.Errorf("levels.names: depth must be >= 0")
		}
	}
	for _, rule := range r.IDs {
		if rule.Depth < 0 {
			return fmt.Errorf("levels.ids: depth must be >= 0")
		}
	}
	for _, rule := range r.Ranges {
		if rule.Depth < 0 {
			return fmt.Errorf("levels.ranges: depth must be >= 0")
		}
		if rule.From > rule.To {
			return fmt.Errorf("levels.ranges: from %d is after to %d", rule.From, rule.To)
		}
	}
	return nil
}
