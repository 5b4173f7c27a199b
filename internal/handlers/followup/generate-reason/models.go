// internal/handlers/followup/generate-reason/models.go
package generatereason

type Input struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

type Output struct {
	Question         string `json:"question"`
	OriginalQuestion string `json:"original_question"`
	OriginalResponse string `json:"original_response"`
}
