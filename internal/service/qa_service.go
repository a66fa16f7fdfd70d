package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/summarizer/api/internal/client"
	"github.com/summarizer/api/internal/model"
	"github.com/summarizer/api/internal/vector"
)

const qaSystemPrompt = "You are a helpful assistant. Answer the question " +
	"using only the transcript excerpts provided. If the excerpts do not " +
	"contain the answer, say so."

// searchLimit is how many chunks the vector search returns before the
// optional reranking pass narrows them down.
const searchLimit = 20

// QAService answers questions over the user's indexed transcripts
type QAService struct {
	qa       *client.LLMClient
	indexer  *vector.Indexer
	reranker *client.RerankClient
}

// NewQAService creates a new QA service. indexer and reranker may be nil;
// without an indexer the service falls back to a mock answer.
func NewQAService(qa *client.LLMClient, indexer *vector.Indexer, reranker *client.RerankClient) *QAService {
	return &QAService{
		qa:       qa,
		indexer:  indexer,
		reranker: reranker,
	}
}

// Ask retrieves the chunks nearest to the question, optionally reranks
// them, and asks the QA model for an answer grounded on the survivors.
func (s *QAService) Ask(ctx context.Context, user string, req *model.AskRequest) (*model.AskResponse, error) {
	if s.indexer == nil || !s.qa.IsConfigured() {
		return s.askMock(req), nil
	}

	chunks, err := s.indexer.Search(ctx, user, req.Question, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("transcript search failed: %w", err)
	}
	if len(chunks) == 0 {
		return &model.AskResponse{Answer: "No indexed transcripts found. Convert some audio first."}, nil
	}

	if s.reranker.IsConfigured() {
		ranked, err := s.reranker.Rerank(ctx, req.Question, chunks)
		if err != nil {
			// Fall back to vector order
			log.Printf("Reranking failed, using vector order: %v", err)
		} else {
			chunks = chunks[:0]
			for _, p := range ranked {
				chunks = append(chunks, p.Text)
			}
		}
	}

	var sb strings.Builder
	for i, chunk := range chunks {
		fmt.Fprintf(&sb, "[%d] %s\n\n", i+1, chunk)
	}
	fmt.Fprintf(&sb, "Question: %s", req.Question)

	answer, err := s.qa.ChatCompletion(ctx, qaSystemPrompt, sb.String())
	if err != nil {
		return nil, fmt.Errorf("QA model request failed: %w", err)
	}

	return &model.AskResponse{
		Answer:  answer,
		Sources: chunks,
	}, nil
}

func (s *QAService) askMock(req *model.AskRequest) *model.AskResponse {
	return &model.AskResponse{
		Answer: fmt.Sprintf("[mock] I don't have an indexed transcript to answer %q yet.", req.Question),
	}
}
