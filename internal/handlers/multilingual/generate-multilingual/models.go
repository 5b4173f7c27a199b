// internal/handlers/multilingual/generate-multilingual/models.go
package generatemultilingual

// Input carries the question and answer already written in Language.
type Input struct {
	Question string `json:"question"`
	Response string `json:"response"`
	Type     string `json:"type"`
	Language string `json:"language"`
}

type Output struct {
	Question         string `json:"question"`
	OriginalQuestion string `json:"original_question"`
	OriginalResponse string `json:"original_response"`
	Type             string `json:"type"`
	Language         string `json:"language"`
}
