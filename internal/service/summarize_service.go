package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/summarizer/api/internal/client"
	"github.com/summarizer/api/internal/model"
)

// SummarizeService produces summaries of single text blocks
type SummarizeService struct {
	llm *client.LLMClient
}

func NewSummarizeService(llm *client.LLMClient) *SummarizeService {
	return &SummarizeService{
		llm: llm,
	}
}

// Summarize returns a summary of the request text
func (s *SummarizeService) Summarize(ctx context.Context, req *model.SummarizeRequest) (*model.SummarizeResponse, error) {
	if s.llm == nil || !s.llm.IsConfigured() {
		return s.summarizeMock(req)
	}

	system := "You are a precise summarizer. Keep summaries short and factual."
	user := fmt.Sprintf("Summarize the following text.\n\n%s", req.Text)
	if req.Prompt != "" {
		user = fmt.Sprintf("%s\n\n%s", req.Prompt, req.Text)
	}

	summary, err := s.llm.ChatCompletion(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("summarization failed: %w", err)
	}

	return &model.SummarizeResponse{
		Summary: strings.TrimSpace(summary),
	}, nil
}

// Mock implementation for development/testing
func (s *SummarizeService) summarizeMock(req *model.SummarizeRequest) (*model.SummarizeResponse, error) {
	text := req.Text
	if len(text) > 120 {
		text = text[:120] + "…"
	}
	return &model.SummarizeResponse{
		Summary: "Summary: " + text,
	}, nil
}
