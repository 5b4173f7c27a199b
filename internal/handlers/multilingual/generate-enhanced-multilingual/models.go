// internal/handlers/multilingual/generate-enhanced-multilingual/models.go
package generateenhancedmultilingual

type Input struct {
	Question string `json:"question"`
	Response string `json:"response"`
	Type     string `json:"type"`
	Language string `json:"language"`
}

// Output reports informative as 0 or 1; Question is null when 0.
type Output struct {
	Informative      int     `json:"informative"`
	Question         *string `json:"question"`
	OriginalQuestion string  `json:"original_question"`
	OriginalResponse string  `json:"original_response"`
	Type             string  `json:"type"`
	Language         string  `json:"language"`
}
