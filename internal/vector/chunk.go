package vector

import (
	"strings"

	"github.com/summarizer/api/internal/client"
)

const defaultChunkTokens = 300

// ChunkVtt strips WebVTT cue markup from subtitle content and splits the
// remaining text into chunks of roughly maxTokens tokens each.
func ChunkVtt(content string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = defaultChunkTokens
	}

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "WEBVTT" {
			continue
		}
		if strings.Contains(line, "-->") {
			continue
		}
		if isCueNumber(line) {
			continue
		}
		lines = append(lines, line)
	}

	var chunks []string
	var current strings.Builder
	for _, line := range lines {
		if current.Len() > 0 && client.EstimateTokens(current.String()+" "+line) > maxTokens {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func isCueNumber(line string) bool {
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(line) > 0
}
