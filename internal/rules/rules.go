// Package rules loads user-defined detection rules from a TOML file
// and adapts them to the detector contract.
package rules

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// CustomRule is one user-defined substring rule.
type CustomRule struct {
	ID             string  `toml:"id"`
	Name           string  `toml:"name"`
	Severity       string  `toml:"severity"`
	Confidence     string  `toml:"confidence"`
	Ecosystem      *string `toml:"ecosystem"`
	Pattern        string  `toml:"pattern"`
	Message        string  `toml:"message"`
	Recommendation string  `toml:"recommendation"`
	ExcludeTests   *bool   `toml:"exclude_tests"`
}

// excludesTests defaults to true when the field is absent.
func (r *CustomRule) excludesTests() bool {
	return r.ExcludeTests == nil || *r.ExcludeTests
}

type ruleSet struct {
	Rules []CustomRule `toml:"rules"`
}

// LoadRules reads a [[rules]] TOML file. Rules missing an id or
// pattern are rejected rather than silently skipped.
func LoadRules(path string) ([]CustomRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var set ruleSet
	if err := toml.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	for i, r := range set.Rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule %d in %s has no id", i+1, path)
		}
		if r.Pattern == "" {
			return nil, fmt.Errorf("rule %q has no pattern", r.ID)
		}
	}
	return set.Rules, nil
}
