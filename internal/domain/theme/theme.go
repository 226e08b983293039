// Package theme holds the fixed catalog of site themes.
package theme

import (
	"github.com/okian/portfolio/internal/domain/model"
)

// Theme names.
const (
	ProfessionalDark = "professional-dark"
	CreativeGradient = "creative-gradient"
	MinimalElegant   = "minimal-elegant"
	WarmProfessional = "warm-professional"
	DefaultThemeName = ProfessionalDark
)

var catalog = []model.ThemeDescriptor{
	{
		Name:           ProfessionalDark,
		DisplayName:    "Professional Dark",
		Description:    "Deep navy with teal and amber accents",
		PrimaryColor:   "#2d3e50",
		SecondaryColor: "#14b8a6",
		AccentColor:    "#f59e0b",
	},
	{
		Name:           CreativeGradient,
		DisplayName:    "Creative Gradient",
		Description:    "Purple and blue gradients with pink accents",
		PrimaryColor:   "#8b5cf6",
		SecondaryColor: "#3b82f6",
		AccentColor:    "#ec4899",
	},
	{
		Name:           MinimalElegant,
		DisplayName:    "Minimal Elegant",
		Description:    "Clean slate with blue and red accents",
		PrimaryColor:   "#475569",
		SecondaryColor: "#3b82f6",
		AccentColor:    "#ef4444",
	},
	{
		Name:           WarmProfessional,
		DisplayName:    "Warm Professional",
		Description:    "Warm grays with orange and amber",
		PrimaryColor:   "#78716c",
		SecondaryColor: "#ea580c",
		AccentColor:    "#d97706",
	},
}

// All returns a copy of the catalog in display order.
func All() []model.ThemeDescriptor {
	out := make([]model.ThemeDescriptor, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a theme by name.
func Lookup(name string) (model.ThemeDescriptor, bool) {
	for _, t := range catalog {
		if t.Name == name {
			return t, true
		}
	}
	return model.ThemeDescriptor{}, false
}

// Default returns the theme used when nothing is stored.
func Default() model.ThemeDescriptor {
	return catalog[0]
}

// Resolve returns the named theme or the default when the name is unknown.
func Resolve(name string) model.ThemeDescriptor {
	if t, ok := Lookup(name); ok {
		return t
	}
	return Default()
}

// Next returns the theme after name in catalog order, wrapping around.
func Next(name string) model.ThemeDescriptor {
	for i, t := range catalog {
		if t.Name == name {
			return catalog[(i+1)%len(catalog)]
		}
	}
	return Default()
}
