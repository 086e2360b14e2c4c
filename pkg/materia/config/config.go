// Package config loads the scoring configuration and the static
// keyword dictionaries from YAML files. Everything here is read-only
// after load and shared by reference across analysis runs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/esglens/materia/pkg/materia/change"
	"github.com/esglens/materia/pkg/materia/discovery"
	"github.com/esglens/materia/pkg/materia/internalerr"
	"github.com/esglens/materia/pkg/materia/recommend"
	"github.com/esglens/materia/pkg/materia/relevance"
)

// ScoringConfig centralizes every tunable weight and threshold of the
// pipeline. Zero values fall back to the documented defaults, so a
// partial YAML file only overrides what it names.
type ScoringConfig struct {
	// Relevance scoring (per-article).
	TitleWeight       float64 `yaml:"title_weight"`
	ContentWeight     float64 `yaml:"content_weight"`
	ExactMatchWeight  float64 `yaml:"exact_match_weight"`
	PartialMatch      float64 `yaml:"partial_match_weight"`
	CompanyMention    float64 `yaml:"company_mention_bonus"`
	SentimentPositive float64 `yaml:"sentiment_positive"`
	SentimentNegative float64 `yaml:"sentiment_negative"`
	RecencyBoost      float64 `yaml:"recency_boost"`
	RecencyDays       int     `yaml:"recency_days"`
	KeywordDensity    float64 `yaml:"keyword_density_weight"`

	// Topic aggregation.
	RelevanceThreshold float64 `yaml:"relevance_threshold"`

	// Change detection.
	SignificantChange      float64 `yaml:"significant_change"`
	EmergingIssueThreshold float64 `yaml:"emerging_issue_threshold"`

	// Deduplication.
	DedupThreshold float64 `yaml:"dedup_threshold"`

	// New-issue discovery.
	NewIssueMinFrequency   int     `yaml:"new_issue_min_frequency"`
	NewIssueScoreThreshold float64 `yaml:"new_issue_score_threshold"`

	// Recommendations.
	MaxRecommendations int `yaml:"max_recommendations"`
}

// DefaultScoringConfig returns the production defaults.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		TitleWeight:            5.0,
		ContentWeight:          2.0,
		ExactMatchWeight:       3.0,
		PartialMatch:           1.0,
		CompanyMention:         2.0,
		SentimentPositive:      1.3,
		SentimentNegative:      0.9,
		RecencyBoost:           1.5,
		RecencyDays:            30,
		KeywordDensity:         2.5,
		RelevanceThreshold:     0.3,
		SignificantChange:      0.3,
		EmergingIssueThreshold: 0.5,
		DedupThreshold:         0.6,
		NewIssueMinFrequency:   3,
		NewIssueScoreThreshold: 0.4,
		MaxRecommendations:     10,
	}
}

// LoadScoringConfig reads a ScoringConfig from a YAML file and fills
// unset fields with defaults.
func LoadScoringConfig(path string) (ScoringConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ScoringConfig{}, fmt.Errorf("read scoring config: %w", err)
	}

	var cfg ScoringConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ScoringConfig{}, fmt.Errorf("parse scoring config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.validate(); err != nil {
		return ScoringConfig{}, err
	}
	return cfg, nil
}

// ApplyDefaults fills every zero-valued field with its documented
// default, so a partially populated config only overrides what it
// sets.
func (c *ScoringConfig) ApplyDefaults() {
	def := DefaultScoringConfig()
	if c.TitleWeight == 0 {
		c.TitleWeight = def.TitleWeight
	}
	if c.ContentWeight == 0 {
		c.ContentWeight = def.ContentWeight
	}
	if c.ExactMatchWeight == 0 {
		c.ExactMatchWeight = def.ExactMatchWeight
	}
	if c.PartialMatch == 0 {
		c.PartialMatch = def.PartialMatch
	}
	if c.CompanyMention == 0 {
		c.CompanyMention = def.CompanyMention
	}
	if c.SentimentPositive == 0 {
		c.SentimentPositive = def.SentimentPositive
	}
	if c.SentimentNegative == 0 {
		c.SentimentNegative = def.SentimentNegative
	}
	if c.RecencyBoost == 0 {
		c.RecencyBoost = def.RecencyBoost
	}
	if c.RecencyDays == 0 {
		c.RecencyDays = def.RecencyDays
	}
	if c.KeywordDensity == 0 {
		c.KeywordDensity = def.KeywordDensity
	}
	if c.RelevanceThreshold == 0 {
		c.RelevanceThreshold = def.RelevanceThreshold
	}
	if c.SignificantChange == 0 {
		c.SignificantChange = def.SignificantChange
	}
	if c.EmergingIssueThreshold == 0 {
		c.EmergingIssueThreshold = def.EmergingIssueThreshold
	}
	if c.DedupThreshold == 0 {
		c.DedupThreshold = def.DedupThreshold
	}
	if c.NewIssueMinFrequency == 0 {
		c.NewIssueMinFrequency = def.NewIssueMinFrequency
	}
	if c.NewIssueScoreThreshold == 0 {
		c.NewIssueScoreThreshold = def.NewIssueScoreThreshold
	}
	if c.MaxRecommendations == 0 {
		c.MaxRecommendations = def.MaxRecommendations
	}
}

func (c ScoringConfig) validate() error {
	if c.DedupThreshold < 0 || c.DedupThreshold > 1 {
		return fmt.Errorf("%w: dedup_threshold %v outside [0,1]", internalerr.ErrInvalidConfig, c.DedupThreshold)
	}
	if c.RelevanceThreshold < 0 {
		return fmt.Errorf("%w: relevance_threshold %v negative", internalerr.ErrInvalidConfig, c.RelevanceThreshold)
	}
	if c.SignificantChange <= 0 {
		return fmt.Errorf("%w: significant_change %v must be positive", internalerr.ErrInvalidConfig, c.SignificantChange)
	}
	return nil
}

// RelevanceWeights converts the config into relevance scorer weights.
func (c ScoringConfig) RelevanceWeights() relevance.Weights {
	return relevance.Weights{
		Title:             c.TitleWeight,
		Content:           c.ContentWeight,
		ExactMatch:        c.ExactMatchWeight,
		PartialMatch:      c.PartialMatch,
		CompanyMention:    c.CompanyMention,
		SentimentPositive: c.SentimentPositive,
		SentimentNegative: c.SentimentNegative,
		Recency:           c.RecencyBoost,
		RecencyWindow:     time.Duration(c.RecencyDays) * 24 * time.Hour,
		KeywordDensity:    c.KeywordDensity,
	}
}

// AnalyzerConfig converts the config for the per-topic analyzer.
func (c ScoringConfig) AnalyzerConfig() relevance.AnalyzerConfig {
	cfg := relevance.DefaultAnalyzerConfig()
	cfg.RelevanceThreshold = c.RelevanceThreshold
	return cfg
}

// DetectorConfig converts the config for change detection.
func (c ScoringConfig) DetectorConfig() change.DetectorConfig {
	cfg := change.DefaultDetectorConfig()
	cfg.SignificantChange = c.SignificantChange
	cfg.EmergingIssueThreshold = c.EmergingIssueThreshold
	return cfg
}

// DiscoveryConfig converts the config for new-issue mining.
func (c ScoringConfig) DiscoveryConfig() discovery.Config {
	cfg := discovery.DefaultConfig()
	cfg.MinFrequency = c.NewIssueMinFrequency
	cfg.ScoreThreshold = c.NewIssueScoreThreshold
	cfg.RecencyWindow = time.Duration(c.RecencyDays) * 24 * time.Hour
	return cfg
}

// RecommendConfig converts the config for the recommendation engine.
func (c ScoringConfig) RecommendConfig() recommend.Config {
	return recommend.Config{
		SignificantChange:  c.SignificantChange,
		MaxRecommendations: c.MaxRecommendations,
	}
}
