package analyses

import (
	"strings"
	"time"
)

// ID tipe untuk Analysis
type AnalysisID string

// Status enum
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Severity enum for code issues
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// NormalizeSeverity maps an arbitrary severity string from the model into one of
// the four buckets, case-insensitively. Unknown or empty values default to low.
func NormalizeSeverity(s string) Severity {
	switch Severity(strings.ToLower(s)) {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return Severity(s)
	default:
		return SeverityLow
	}
}

// SeverityRank orders severities by priority: critical first, low last.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// SeverityCounts value object
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

func (c *SeverityCounts) Add(s Severity) {
	switch s {
	case SeverityCritical:
		c.Critical++
	case SeverityHigh:
		c.High++
	case SeverityMedium:
		c.Medium++
	default:
		c.Low++
	}
	c.Total++
}

// Aggregate Root: Analysis
// One full analysis run against a repository. Created in processing state, moves
// exactly once to completed or failed.
type Analysis struct {
	ID            AnalysisID     `json:"id"`
	RepositoryID  string         `json:"repository_id"`
	UserID        string         `json:"user_id"`
	Status        Status         `json:"status"`
	OverallScore  *float64       `json:"overall_score,omitempty"`
	Counts        SeverityCounts `json:"counts"`
	Summary       string         `json:"summary,omitempty"`
	FilesAnalyzed int            `json:"files_analyzed"`
	LinesAnalyzed int            `json:"lines_analyzed"`
	TokensUsed    int            `json:"tokens_used"`
	EstimatedCost float64        `json:"estimated_cost"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	PayloadJSON   string         `json:"payload_json,omitempty"`
	PayloadURL    string         `json:"payload_url,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
}

// ID tipe untuk CodeIssue
type IssueID string

// CodeIssue is one finding from an analysis. Owned by its Analysis; deleted with it.
type CodeIssue struct {
	ID          IssueID    `json:"id"`
	AnalysisID  AnalysisID `json:"analysis_id"`
	Severity    Severity   `json:"severity"`
	Category    string     `json:"category"`
	FilePath    string     `json:"file_path"`
	LineNumber  *int       `json:"line_number,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Suggestion  string     `json:"suggestion"`
	CreatedAt   time.Time  `json:"created_at"`
}
