// internal/handlers/followup/generate-followup/models.go
package generatefollowup

import "survey-intelligence/internal/models"

type Input struct {
	Question     string   `json:"question"`
	Response     string   `json:"response"`
	AllowedTypes []string `json:"allowed_types,omitempty"`
}

type Output struct {
	Followups []models.FollowupQuestion `json:"followups"`
}
