package model

// SummarizeRequest asks for a summary of a single block of text
type SummarizeRequest struct {
	Text   string `json:"text" validate:"required"`
	Prompt string `json:"prompt"`
}

// SummarizeResponse is the body of POST /api/v1/summarize
type SummarizeResponse struct {
	Summary string `json:"summary"`
}
