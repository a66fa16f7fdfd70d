package model

// AskRequest asks a question against the user's indexed transcripts
type AskRequest struct {
	Question string `json:"question" validate:"required"`
}

// AskResponse carries the answer and the transcript chunks it was grounded on
type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}
