package openaidet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/adiwira-dev/sniffgate/internal/domain/findings"
)

const maxTokens = 2048

// Client is an AI detector that talks to OpenAI directly instead of a
// standalone model service. It implements the same Detector port, so the
// orchestrator cannot tell the two AI variants apart.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

func (c *Client) Backend() findings.Backend { return findings.BackendAI }

type modelFinding struct {
	Label       string  `json:"label"`
	StartLine   int     `json:"start_line"`
	EndLine     int     `json:"end_line"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

type modelOutput struct {
	Findings []modelFinding `json:"findings"`
}

// Detect asks the model for smells in JSON form and shapes the answer into
// raw findings. Model and transport failures collapse into the Report.
func (c *Client) Detect(ctx context.Context, code, language string) ([]findings.RawFinding, findings.Report) {
	start := time.Now()
	report := func(status findings.BackendStatus, reason string, n int) findings.Report {
		return findings.Report{
			Status:     status,
			Reason:     reason,
			Findings:   n,
			DurationMS: time.Since(start).Milliseconds(),
		}
	}

	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(code, language)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, report(findings.StatusTimeout, "detection budget exceeded", 0)
		}
		return nil, report(findings.StatusFailed, fmt.Sprintf("chat completion failed: %v", err), 0)
	}
	if len(resp.Choices) == 0 {
		return nil, report(findings.StatusFailed, "model returned no choices", 0)
	}

	var out modelOutput
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return nil, report(findings.StatusFailed, fmt.Sprintf("malformed model output: %v", err), 0)
	}

	raw := make([]findings.RawFinding, 0, len(out.Findings))
	for _, f := range out.Findings {
		conf := findings.ClampConfidence(f.Confidence)
		raw = append(raw, findings.RawFinding{
			Backend:     findings.BackendAI,
			Label:       f.Label,
			Location:    findings.Location{StartLine: f.StartLine, EndLine: f.EndLine},
			Description: f.Description,
			Confidence:  &conf,
		})
	}
	return raw, report(findings.StatusSuccess, "", len(raw))
}
