package models

import "strings"

// Theme is a caller-supplied topic with an importance weight in [0,100].
type Theme struct {
	Name       string `json:"name"`
	Importance int    `json:"importance"`
}

// ThemeMatch is the outcome of theme detection. A nil *ThemeMatch means
// no theme matched, which is distinct from a match with importance 0.
type ThemeMatch struct {
	Name       string `json:"theme_name"`
	Importance int    `json:"importance"`
}

// HighestImportance returns the theme with the largest importance. Ties
// resolve to the earliest theme in the list.
func HighestImportance(themes []Theme) (Theme, bool) {
	if len(themes) == 0 {
		return Theme{}, false
	}
	best := themes[0]
	for _, th := range themes[1:] {
		if th.Importance > best.Importance {
			best = th
		}
	}
	return best, true
}

// FindTheme looks a theme up by name, ignoring case and surrounding space.
func FindTheme(themes []Theme, name string) (Theme, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, th := range themes {
		if strings.ToLower(strings.TrimSpace(th.Name)) == needle {
			return th, true
		}
	}
	return Theme{}, false
}
