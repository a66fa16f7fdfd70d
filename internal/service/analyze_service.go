package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/summarizer/api/internal/client"
	"github.com/summarizer/api/internal/model"
	"github.com/summarizer/api/internal/storage"
)

// ErrFileNotUploaded reports which file an analysis request referenced
// without uploading it first.
type ErrFileNotUploaded struct {
	File string
}

func (e *ErrFileNotUploaded) Error() string {
	return fmt.Sprintf("please upload your %s first!", e.File)
}

// maxConcurrentSummaries bounds parallel LLM calls per analysis request
const maxConcurrentSummaries = 4

// AnalyzeService runs cross-document analysis: each document is summarized
// individually, then the summaries are combined into one analysis.
type AnalyzeService struct {
	llm   *client.LLMClient
	store *storage.Store
}

func NewAnalyzeService(llm *client.LLMClient, store *storage.Store) *AnalyzeService {
	return &AnalyzeService{
		llm:   llm,
		store: store,
	}
}

// Analyze summarizes each requested document and combines the results
func (s *AnalyzeService) Analyze(ctx context.Context, user string, req *model.AnalyzeRequest) (*model.AnalyzeResponse, error) {
	for _, f := range req.Files {
		if !s.store.Exists(user, f) {
			return nil, &ErrFileNotUploaded{File: f}
		}
	}

	if s.llm == nil || !s.llm.IsConfigured() {
		return s.analyzeMock(req)
	}

	summaries, err := s.summarizeAll(ctx, user, req.Files)
	if err != nil {
		return nil, err
	}

	analysis, err := s.combine(ctx, summaries, req.Prompt)
	if err != nil {
		return nil, err
	}

	return &model.AnalyzeResponse{
		ID:        uuid.New().String(),
		Analysis:  analysis,
		Documents: summaries,
	}, nil
}

// summarizeAll runs per-document summaries with bounded concurrency
func (s *AnalyzeService) summarizeAll(ctx context.Context, user string, files []string) ([]model.DocumentSummary, error) {
	summaries := make([]model.DocumentSummary, len(files))
	sem := make(chan struct{}, maxConcurrentSummaries)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, f := range files {
		wg.Add(1)
		go func(i int, f string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			summary, err := s.summarizeFile(ctx, user, f)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			summaries[i] = model.DocumentSummary{File: f, Summary: summary}
		}(i, f)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return summaries, nil
}

func (s *AnalyzeService) summarizeFile(ctx context.Context, user, file string) (string, error) {
	content, err := s.store.ReadFile(user, file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}

	prompt := fmt.Sprintf("Summarize the key points of the following document.\n\nDocument (%s):\n%s\n\nSummary:",
		file, string(content))

	summary, err := s.llm.Completion(ctx, prompt, 0)
	if err != nil {
		return "", fmt.Errorf("summarization of %s failed: %w", file, err)
	}
	return strings.TrimSpace(summary), nil
}

func (s *AnalyzeService) combine(ctx context.Context, summaries []model.DocumentSummary, userPrompt string) (string, error) {
	var b strings.Builder
	for _, d := range summaries {
		b.WriteString(fmt.Sprintf("## %s\n%s\n\n", d.File, d.Summary))
	}

	instruction := "Compare and synthesize the following document summaries into one coherent analysis."
	if userPrompt != "" {
		instruction = userPrompt
	}

	system := "You are an analyst producing concise, factual cross-document reports."
	user := fmt.Sprintf("%s\n\n%s", instruction, b.String())

	analysis, err := s.llm.ChatCompletion(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("analysis failed: %w", err)
	}
	return strings.TrimSpace(analysis), nil
}

// Mock implementation for development/testing
func (s *AnalyzeService) analyzeMock(req *model.AnalyzeRequest) (*model.AnalyzeResponse, error) {
	summaries := make([]model.DocumentSummary, 0, len(req.Files))
	for _, f := range req.Files {
		summaries = append(summaries, model.DocumentSummary{
			File:    f,
			Summary: fmt.Sprintf("Summary of %s.", f),
		})
	}

	return &model.AnalyzeResponse{
		ID:        uuid.New().String(),
		Analysis:  "Combined analysis of the uploaded documents.",
		Documents: summaries,
	}, nil
}
