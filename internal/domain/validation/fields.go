package validation

import (
	"sort"
)

// FieldConfig describes one form field and its ordered rules.
type FieldConfig struct {
	Label        string
	Type         string
	Autocomplete string
	Placeholder  string
	FullWidth    bool
	Rows         int
	Rules        []Rule
}

// Catalog maps field names to their configuration.
type Catalog map[string]FieldConfig

// Names returns the configured field names in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Portfolio request field names.
const (
	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldEmail        = "email"
	FieldResumeHeader = "resumeHeader"
	FieldSkills       = "skills"

	// FieldHoneypot is hidden from humans; bots fill it.
	FieldHoneypot = "_gotcha"
)

// PortfolioRequestFields returns the catalog of the portfolio request form.
func PortfolioRequestFields() Catalog {
	return Catalog{
		FieldFirstName: {
			Label:        "First Name",
			Type:         "text",
			Autocomplete: "given-name",
			Rules:        []Rule{Required, MinLength(2)},
		},
		FieldLastName: {
			Label:        "Last Name",
			Type:         "text",
			Autocomplete: "family-name",
			Rules:        []Rule{Required, MinLength(2)},
		},
		FieldEmail: {
			Label:        "Contact Email",
			Type:         "email",
			Autocomplete: "email",
			FullWidth:    true,
			Rules:        []Rule{Required, Email},
		},
		FieldResumeHeader: {
			Label:       "Resume Header",
			Type:        "text",
			Placeholder: "e.g. QA Lead, Frontend Developer",
			FullWidth:   true,
			Rules:       []Rule{Required, MinLength(3)},
		},
		FieldSkills: {
			Label:       "Skills (comma separated)",
			Type:        "textarea",
			Placeholder: "JavaScript, Vue.js, Node.js, Python...",
			FullWidth:   true,
			Rows:        4,
			Rules:       []Rule{Required, SkillsList},
		},
	}
}
