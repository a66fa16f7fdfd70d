package model

// AnalyzeRequest asks for a cross-document analysis of previously uploaded files
type AnalyzeRequest struct {
	Files  []string `json:"file" validate:"required,min=1,dive,required"`
	Prompt string   `json:"prompt"`
}

// DocumentSummary is the per-file portion of an analysis result
type DocumentSummary struct {
	File    string `json:"file"`
	Summary string `json:"summary"`
}

// AnalyzeResponse is the body of POST /api/v1/analyze
type AnalyzeResponse struct {
	ID        string            `json:"id"`
	Analysis  string            `json:"analysis"`
	Documents []DocumentSummary `json:"documents"`
}
