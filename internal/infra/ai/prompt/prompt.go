package prompt

import (
	"fmt"
	"strings"

	"github.com/vinay9977/CodeCritic/internal/domain/analyses"
)

const (
	// maxContextChars bounds the packed code block, roughly 2500 tokens.
	maxContextChars = 10000
	// minUsefulChars is the smallest truncated remainder still worth sending.
	minUsefulChars = 200
	// maxIssues caps how many findings the model is asked for.
	maxIssues = 10

	truncationMarker = "\n... (truncated)"
)

// GetSystemPrompt provides the reviewer persona and output discipline.
func GetSystemPrompt() string {
	return "You are an expert code reviewer. Analyze code and return structured JSON feedback focusing on critical issues only."
}

// BuildContext packs source files into one bounded text block, in the given
// order. Each file becomes a labeled fenced block. Once the budget would be
// exceeded, the current file is truncated to the remaining budget (only if the
// remainder is still useful) and every later file is dropped.
func BuildContext(files []analyses.SourceFile, language string) string {
	var parts []string
	total := 0

	for _, f := range files {
		block := fmt.Sprintf("### File: %s\n```%s\n%s\n```\n", f.Path, language, f.Content)

		if total+len(block) > maxContextChars {
			remaining := maxContextChars - total
			if remaining > minUsefulChars {
				parts = append(parts, block[:remaining]+truncationMarker)
			}
			break
		}

		parts = append(parts, block)
		total += len(block)
	}

	return strings.Join(parts, "\n")
}

// GetAnalysisPrompt wraps the packed code in the instruction template: four
// focus areas and the exact JSON schema the invoker parses.
func GetAnalysisPrompt(codeContext, language string) string {
	return fmt.Sprintf(`Analyze the following %s code and identify ONLY critical and high-priority issues.

%s

Focus on:
1. Security vulnerabilities (SQL injection, XSS, etc.)
2. Critical bugs and logic errors
3. Major performance issues
4. Serious code quality problems

Provide response in this EXACT JSON format:
{
  "overall_score": 75,
  "summary": "Brief 1-sentence overview",
  "issues": [
    {
      "severity": "critical",
      "category": "security",
      "file": "filename.py",
      "line": 42,
      "title": "SQL Injection vulnerability",
      "description": "Brief description",
      "suggestion": "How to fix"
    }
  ],
  "total_lines": 150
}

Keep response concise. Score from 0-100 (100 = perfect). List max %d most important issues.`, language, codeContext, maxIssues)
}

// GetQuickScorePrompt asks for a bare 0-100 number for fast triage.
func GetQuickScorePrompt(snippet, language string) string {
	if len(snippet) > 500 {
		snippet = snippet[:500]
	}
	return fmt.Sprintf("Rate this %s code quality from 0-100. Respond with ONLY a number:\n\n%s", language, snippet)
}

// MaxContextChars exposes the packing budget for callers that need to reason
// about prompt size.
func MaxContextChars() int { return maxContextChars }
