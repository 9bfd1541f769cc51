// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ScreeningCriterion is one named criterion applied during full-text
// screening. A record excluded on a criterion records "name=out" in its
// screening_criteria field.
type ScreeningCriterion struct {
	// Name is the criterion identifier, unique within the project.
	Name string `json:"name" yaml:"name"`

	// Explanation describes what the criterion tests.
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// ScreenSettings configures the full-text screening stage.
type ScreenSettings struct {
	Criteria []ScreeningCriterion `json:"criteria,omitempty" yaml:"criteria,omitempty"`
}

// PrepSettings configures metadata preparation.
type PrepSettings struct {
	// RequiredFields maps an entry type to the fields that must be
	// present for the record to count as prepared. Missing entries fall
	// back to defaultRequiredFields.
	RequiredFields map[string][]string `json:"required_fields,omitempty" yaml:"required_fields,omitempty"`
}

// defaultRequiredFields covers the common bibliographic entry types.
var defaultRequiredFields = map[string][]string{
	"article":       {FieldAuthor, FieldTitle, FieldJournal, FieldYear},
	"inproceedings": {FieldAuthor, FieldTitle, FieldBooktitle, FieldYear},
	"book":          {FieldAuthor, FieldTitle, FieldYear},
	"misc":          {FieldAuthor, FieldTitle, FieldYear},
}

// RequiredFieldsFor returns the required fields for an entry type,
// consulting the project override first.
func (p PrepSettings) RequiredFieldsFor(entryType string) []string {
	if fields, ok := p.RequiredFields[entryType]; ok {
		return fields
	}
	if fields, ok := defaultRequiredFields[entryType]; ok {
		return fields
	}
	return defaultRequiredFields["misc"]
}

// Settings is the per-project configuration persisted as settings.yaml
// at the project root. The source list is mutated only through the
// source registry.
type Settings struct {
	// ProjectName labels the project in status output.
	ProjectName string `json:"project_name" yaml:"project_name"`

	// Sources is the ordered list of configured search sources.
	Sources []Source `json:"sources" yaml:"sources"`

	// Prep configures metadata preparation.
	Prep PrepSettings `json:"prep,omitempty" yaml:"prep,omitempty"`

	// Screen configures full-text screening.
	Screen ScreenSettings `json:"screen,omitempty" yaml:"screen,omitempty"`
}
