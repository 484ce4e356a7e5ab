package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/vinay9977/CodeCritic/internal/domain/ai"
	"github.com/vinay9977/CodeCritic/internal/domain/analyses"
	"github.com/vinay9977/CodeCritic/internal/infra/ai/prompt"
)

const (
	defaultModel    = "gpt-3.5-turbo"
	maxOutputTokens = 1500
	requestTimeout  = 30 * time.Second

	// Published per-1000-token rates for the default model.
	costPer1KInputTokens  = 0.0005
	costPer1KOutputTokens = 0.0015
)

type Client struct {
	client   *openai.Client
	model    string
	mockMode bool
}

// NewClient builds the analyzer adapter. baseURL overrides the endpoint (used
// by tests); mockMode forces the offline mock result on every call.
func NewClient(apiKey, model, baseURL string, mockMode bool) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: requestTimeout}
	if model == "" {
		model = defaultModel
	}
	return &Client{client: openai.NewClientWithConfig(cfg), model: model, mockMode: mockMode}
}

// AnalyzeCode packs the files into one prompt, makes a single chat-completion
// call and parses the JSON report. Transport-level failures degrade to a
// deterministic mock result so the pipeline never stalls on a flaky endpoint.
func (c *Client) AnalyzeCode(ctx context.Context, files []analyses.SourceFile, language string) (*ai.Report, error) {
	if c.mockMode {
		return mockReport(files, language), nil
	}

	codeContext := prompt.BuildContext(files, language)
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.3,
		MaxTokens:   maxOutputTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetAnalysisPrompt(codeContext, language)},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		cerr := classify(err)
		if errors.Is(cerr, ai.ErrUnavailable) {
			log.Printf("openai unavailable, falling back to mock analysis: %v", err)
			return mockReport(files, language), nil
		}
		return nil, cerr
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ai.ErrMalformedResponse)
	}

	raw := resp.Choices[0].Message.Content
	var rep ai.Report
	if err := json.Unmarshal([]byte(raw), &rep); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrMalformedResponse, err)
	}

	rep.Raw = json.RawMessage(raw)
	rep.TokensUsed = resp.Usage.TotalTokens
	rep.EstimatedCost = estimateCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return &rep, nil
}

// QuickScore issues a minimal single-number request for fast triage. Advisory
// only: any failure returns the neutral default instead of an error.
func (c *Client) QuickScore(ctx context.Context, snippet, language string) int {
	const defaultScore = 50

	if c.mockMode {
		return defaultScore
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   10,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetQuickScorePrompt(snippet, language)},
		},
	})
	if err != nil || len(resp.Choices) == 0 {
		return defaultScore
	}

	score, err := strconv.Atoi(strings.TrimSpace(resp.Choices[0].Message.Content))
	if err != nil {
		return defaultScore
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// classify maps transport errors onto the tagged domain variants so callers
// never have to match on error message text.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %s", ai.ErrQuotaExceeded, apiErr.Message)
		}
		return fmt.Errorf("openai api error: %w", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ai.ErrUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ai.ErrUnavailable, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", ai.ErrUnavailable, err)
	}

	return fmt.Errorf("openai request failed: %w", err)
}

func estimateCost(promptTokens, completionTokens int) float64 {
	cost := (float64(promptTokens)/1000)*costPer1KInputTokens +
		(float64(completionTokens)/1000)*costPer1KOutputTokens
	return math.Round(cost*1e6) / 1e6
}

// mockReport is the deterministic synthetic result substituted when the model
// endpoint is unreachable.
func mockReport(files []analyses.SourceFile, language string) *ai.Report {
	firstFile := "unknown"
	totalLines := 0
	for i, f := range files {
		if i == 0 {
			firstFile = f.Path
		}
		totalLines += f.Lines
	}

	line42, line15 := 42, 15
	rep := &ai.Report{
		OverallScore:  75,
		Summary:       fmt.Sprintf("Mock analysis of %d %s files. OpenAI API unavailable.", len(files), language),
		TotalLines:    totalLines,
		TokensUsed:    100,
		EstimatedCost: 0.0001,
		Issues: []ai.ReportIssue{
			{
				Severity:    "high",
				Category:    "quality",
				File:        firstFile,
				Line:        &line42,
				Title:       "Code complexity issue",
				Description: "Function has high cyclomatic complexity",
				Suggestion:  "Consider breaking down into smaller functions",
			},
			{
				Severity:    "medium",
				Category:    "performance",
				File:        firstFile,
				Line:        &line15,
				Title:       "Inefficient loop",
				Description: "Nested loop could be optimized",
				Suggestion:  "Use dictionary lookup instead of nested iteration",
			},
		},
	}

	// Small samples get proportionally fewer synthetic issues.
	if n := min(len(files), 3); n < len(rep.Issues) {
		rep.Issues = rep.Issues[:n]
	}

	if raw, err := json.Marshal(rep); err == nil {
		rep.Raw = raw
	}
	return rep
}
