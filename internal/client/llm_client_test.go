package client

import (
	"strings"
	"testing"
)

func TestFormatMistralPrompt(t *testing.T) {
	got := FormatMistralPrompt("be brief", "summarize this")

	want := "<|im_start|>system\nbe brief<|im_end|>\n" +
		"<|im_start|>user\nsummarize this<|im_end|>\n" +
		"<|im_start|>assistant\n"
	if got != want {
		t.Errorf("FormatMistralPrompt = %q, want %q", got, want)
	}
}

func TestEstimateTokens(t *testing.T) {
	// 4 words / 0.75 ≈ 5.33, 20 chars / 3 ≈ 6.67 → max wins
	got := EstimateTokens("one two three fourty")
	if got != 6 {
		t.Errorf("EstimateTokens = %d, want 6", got)
	}

	if EstimateTokens("") != 0 {
		t.Errorf("EstimateTokens(empty) = %d, want 0", EstimateTokens(""))
	}

	// Long text should scale roughly with length
	long := strings.Repeat("word ", 1000)
	if est := EstimateTokens(long); est < 1000 {
		t.Errorf("EstimateTokens(long) = %d, want >= 1000", est)
	}
}
