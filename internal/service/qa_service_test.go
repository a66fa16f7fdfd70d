package service

import (
	"context"
	"strings"
	"testing"

	"github.com/summarizer/api/internal/client"
	"github.com/summarizer/api/internal/config"
	"github.com/summarizer/api/internal/model"
)

func TestAskFallsBackToMock(t *testing.T) {
	svc := NewQAService(client.NewLLMClient(config.LLMConfig{}), nil, nil)

	resp, err := svc.Ask(context.Background(), "alice", &model.AskRequest{
		Question: "what happened?",
	})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if !strings.Contains(resp.Answer, "what happened?") {
		t.Errorf("expected mock answer to echo the question, got %q", resp.Answer)
	}
}
