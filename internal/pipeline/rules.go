package pipeline

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// BucketRule assigns a risk score to values below a threshold. Rules
// are evaluated in order; the first match wins.
type BucketRule struct {
	Below float64 `yaml:"below"`
	Score float64 `yaml:"score"`
}

// SectorRule assigns a risk score when the sector matches a keyword.
type SectorRule struct {
	Keywords []string `yaml:"keywords"`
	Score    float64  `yaml:"score"`
}

// TeamRules scores team composition by size and stage.
type TeamRules struct {
	SoloAdvanced float64 `yaml:"solo_advanced"`
	SoloEarly    float64 `yaml:"solo_early"`
	Small        float64 `yaml:"small"`
	Large        float64 `yaml:"large"`
}

// RuleSet is the tuning file for rule-based scoring.
type RuleSet struct {
	BaselineScore float64 `yaml:"baseline_score"`

	RunwayRisk    []BucketRule `yaml:"runway_risk"`
	RunwayDefault float64      `yaml:"runway_default"`

	CustomerRisk    []BucketRule `yaml:"customer_risk"`
	CustomerDefault float64      `yaml:"customer_default"`

	SectorRisk    []SectorRule `yaml:"sector_risk"`
	SectorDefault float64      `yaml:"sector_default"`

	TeamRisk TeamRules `yaml:"team_risk"`

	UnitWeights       map[string]float64 `yaml:"unit_weights"`
	DefaultUnitWeight float64            `yaml:"default_unit_weight"`
}

var defaultRules = mustLoadRules(rulesYAML)

func mustLoadRules(raw []byte) RuleSet {
	var rs RuleSet
	if err := yaml.Unmarshal(raw, &rs); err != nil {
		panic("pipeline: embedded rules.yaml invalid: " + err.Error())
	}
	return rs
}

// bucketScore returns the score of the first bucket v falls below, or
// def when v clears every bucket.
func bucketScore(rules []BucketRule, v, def float64) float64 {
	for _, r := range rules {
		if v < r.Below {
			return r.Score
		}
	}
	return def
}

// sectorScore matches sector text against the keyword tables.
func sectorScore(rules []SectorRule, sector string, def float64) float64 {
	lower := strings.ToLower(sector)
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Score
			}
		}
	}
	return def
}

// stageRank orders funding stages; -1 means unknown. Series A and
// beyond count as advanced.
func stageRank(stage string) int {
	lower := strings.ToLower(stage)
	switch {
	case strings.Contains(lower, "pre-seed"), strings.Contains(lower, "preseed"):
		return 0
	case strings.Contains(lower, "seed"):
		return 1
	case strings.Contains(lower, "series a"):
		return 2
	case strings.Contains(lower, "series b"):
		return 3
	case strings.Contains(lower, "series c"), strings.Contains(lower, "series d"):
		return 4
	case strings.Contains(lower, "growth"), strings.Contains(lower, "late"):
		return 5
	default:
		return -1
	}
}

func isAdvancedStage(stage string) bool {
	return stageRank(stage) >= 2
}
