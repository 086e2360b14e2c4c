package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/esglens/materia/pkg/materia/internalerr"
	"github.com/esglens/materia/pkg/materia/news"
	"github.com/esglens/materia/pkg/materia/standards"
)

// Loader loads all configuration files for an analysis deployment.
// Paths left empty fall back to built-in defaults (empty dictionaries,
// default weights).
type Loader struct {
	ScoringPath  string
	KeywordsPath string
	StoplistPath string
	MappingPath  string
}

// Components holds the loaded, ready-to-use configuration.
type Components struct {
	Scoring   ScoringConfig
	Keywords  *KeywordDict
	Stopwords []string
	Standards *standards.Table
}

// Load reads every configured file and returns initialized components.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{
		Scoring:   DefaultScoringConfig(),
		Keywords:  &KeywordDict{},
		Standards: standards.NewTable(nil),
	}

	if l.ScoringPath != "" {
		cfg, err := LoadScoringConfig(l.ScoringPath)
		if err != nil {
			return nil, fmt.Errorf("load scoring config: %w", err)
		}
		comp.Scoring = cfg
	}

	if l.KeywordsPath != "" {
		dict, err := LoadKeywordDict(l.KeywordsPath)
		if err != nil {
			return nil, fmt.Errorf("load keywords: %w", err)
		}
		comp.Keywords = dict
	}

	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Stopwords = sl.Terms
	}

	if l.MappingPath != "" {
		table, err := standards.LoadTable(l.MappingPath)
		if err != nil {
			return nil, fmt.Errorf("load standard mappings: %w", err)
		}
		comp.Standards = table
	}

	return comp, nil
}

// LoadAssessment reads a prior materiality assessment from a YAML file.
func LoadAssessment(path string) (news.Assessment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return news.Assessment{}, fmt.Errorf("read assessment: %w", err)
	}

	var a news.Assessment
	if err := yaml.Unmarshal(data, &a); err != nil {
		return news.Assessment{}, fmt.Errorf("parse assessment: %w", err)
	}

	if len(a.Topics) == 0 {
		return news.Assessment{}, fmt.Errorf("%w: assessment has no topics", internalerr.ErrInvalidConfig)
	}
	for _, t := range a.Topics {
		if t.Name == "" || t.Priority < 1 {
			return news.Assessment{}, fmt.Errorf("%w: topic %q needs a name and a positive priority", internalerr.ErrInvalidConfig, t.Name)
		}
	}

	return a, nil
}
