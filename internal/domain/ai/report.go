package ai

import (
	"encoding/json"

	"github.com/vinay9977/CodeCritic/internal/domain/analyses"
)

// Report is the parsed structured output of one analysis call, plus derived
// token/cost metadata attached by the adapter.
type Report struct {
	OverallScore float64       `json:"overall_score"`
	Summary      string        `json:"summary"`
	Issues       []ReportIssue `json:"issues"`
	TotalLines   int           `json:"total_lines"`

	// Metadata, not part of the model's schema.
	TokensUsed    int             `json:"tokens_used"`
	EstimatedCost float64         `json:"estimated_cost"`
	Raw           json.RawMessage `json:"-"`
}

// ReportIssue mirrors one entry of the model's issues array. Fields may be
// missing in the model output; defaulting happens when the orchestrator turns
// these into persisted CodeIssue rows.
type ReportIssue struct {
	Severity    string `json:"severity"`
	Category    string `json:"category"`
	File        string `json:"file"`
	Line        *int   `json:"line"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
}

// SeverityCounts tallies issues into the four severity buckets. Unknown or
// missing severities count as low.
func (r *Report) SeverityCounts() analyses.SeverityCounts {
	var c analyses.SeverityCounts
	for _, is := range r.Issues {
		c.Add(analyses.NormalizeSeverity(is.Severity))
	}
	return c
}
