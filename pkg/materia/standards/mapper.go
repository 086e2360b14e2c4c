// Package standards maps assessment topic names onto SASB disclosure
// codes using a static mapping table loaded at startup.
package standards

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/esglens/materia/pkg/materia/internalerr"
)

// AlignmentUnmapped marks a topic with no SASB code.
const AlignmentUnmapped = "unmapped"

// Mapping is one SASB disclosure topic and the assessment topic names
// and keywords it covers.
type Mapping struct {
	Code     string   `yaml:"code"`
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"` // E, S or G
	Topics   []string `yaml:"topics"`
}

// Table is the full topic-to-standard mapping. It is read-only after
// load; a single instance is shared across runs.
type Table struct {
	mappings []Mapping
}

// LoadTable reads the mapping table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping table: %w", err)
	}

	var doc struct {
		Mappings []Mapping `yaml:"mappings"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse mapping table: %w", err)
	}

	return NewTable(doc.Mappings), nil
}

// NewTable builds a table from in-memory mappings.
func NewTable(mappings []Mapping) *Table {
	return &Table{mappings: mappings}
}

// Map returns the SASB mapping for a topic name. Exact matches win
// over containment matches. Returns ErrUnmappedTopic when nothing in
// the table covers the topic; callers proceed with AlignmentUnmapped.
func (t *Table) Map(topicName string) (Mapping, error) {
	name := strings.ToLower(strings.TrimSpace(topicName))
	if name == "" {
		return Mapping{}, fmt.Errorf("%w: empty topic name", internalerr.ErrUnmappedTopic)
	}

	for _, m := range t.mappings {
		for _, topic := range m.Topics {
			if strings.ToLower(topic) == name {
				return m, nil
			}
		}
	}

	for _, m := range t.mappings {
		for _, topic := range m.Topics {
			lt := strings.ToLower(topic)
			if lt == "" {
				continue
			}
			if strings.Contains(name, lt) || strings.Contains(lt, name) {
				return m, nil
			}
		}
	}

	return Mapping{}, fmt.Errorf("%w: %s", internalerr.ErrUnmappedTopic, topicName)
}

// Codes returns all codes in the table, in table order.
func (t *Table) Codes() []string {
	codes := make([]string, 0, len(t.mappings))
	for _, m := range t.mappings {
		codes = append(codes, m.Code)
	}
	return codes
}
