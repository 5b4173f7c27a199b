// internal/handlers/theme/generate-theme-enhanced/models.go
package generatethemeenhanced

import "survey-intelligence/internal/models"

const (
	ThemeEnabled  = "Yes"
	ThemeDisabled = "No"
)

type Input struct {
	Question        string           `json:"question"`
	Response        string           `json:"response"`
	Type            string           `json:"type"`
	Language        string           `json:"language"`
	Theme           string           `json:"theme"`
	ThemeParameters *ThemeParameters `json:"theme_parameters,omitempty"`
}

// ThemeParameters is required when Theme is "Yes".
type ThemeParameters struct {
	Themes []models.Theme `json:"themes"`
}

// Output mirrors the analyzer branch taken. DetectedTheme and
// ThemeImportance are set when the answer addressed a supplied theme;
// HighestImportanceTheme is set when it addressed none of them.
type Output struct {
	Informative            int     `json:"informative"`
	Question               *string `json:"question"`
	Explanation            *string `json:"explanation"`
	OriginalQuestion       string  `json:"original_question"`
	OriginalResponse       string  `json:"original_response"`
	Type                   string  `json:"type"`
	Language               string  `json:"language"`
	Theme                  string  `json:"theme"`
	DetectedTheme          *string `json:"detected_theme"`
	ThemeImportance        *int    `json:"theme_importance"`
	HighestImportanceTheme *string `json:"highest_importance_theme"`
}
