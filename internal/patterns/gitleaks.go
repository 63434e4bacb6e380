package patterns

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/spf13/viper"
	"github.com/zricethezav/gitleaks/v8/config"

	"github.com/infogrep/infogrep/internal/types"
)

// FromGitleaks converts a gitleaks TOML configuration into a pattern set.
// Rules without a content regex (path-only rules) are skipped. Every
// converted pattern receives the given confidence label.
func FromGitleaks(toml []byte, conf types.Confidence) (Set, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(bytes.NewReader(toml)); err != nil {
		return Set{}, fmt.Errorf("failed to read gitleaks config: %w", err)
	}

	var vc config.ViperConfig
	if err := v.Unmarshal(&vc); err != nil {
		return Set{}, fmt.Errorf("failed to unmarshal gitleaks config: %w", err)
	}

	cfg, err := vc.Translate()
	if err != nil {
		return Set{}, fmt.Errorf("failed to translate gitleaks config: %w", err)
	}

	ids := make([]string, 0, len(cfg.Rules))
	for id := range cfg.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	set := Set{Patterns: make([]types.PatternDefinition, 0, len(ids))}
	for _, id := range ids {
		rule := cfg.Rules[id]
		if rule.Regex == nil {
			continue
		}
		set.Patterns = append(set.Patterns, types.PatternDefinition{
			Name:       rule.RuleID,
			Regex:      rule.Regex.String(),
			Confidence: conf,
		})
	}
	return set, nil
}

// DefaultGitleaks converts the rule set embedded in the gitleaks module.
func DefaultGitleaks() (Set, error) {
	return FromGitleaks([]byte(config.DefaultConfig), types.ConfHigh)
}
