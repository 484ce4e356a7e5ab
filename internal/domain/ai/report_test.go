package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vinay9977/CodeCritic/internal/domain/analyses"
)

func TestReport_SeverityCounts(t *testing.T) {
	r := &Report{Issues: []ReportIssue{
		{Severity: "critical"},
		{Severity: "critical"},
		{Severity: "high"},
		{Severity: "medium"},
		{Severity: "info"}, // unknown -> low
		{Severity: ""},     // empty -> low
	}}

	c := r.SeverityCounts()
	assert.Equal(t, analyses.SeverityCounts{
		Critical: 2, High: 1, Medium: 1, Low: 2, Total: 6,
	}, c)
}

func TestReport_SeverityCountsEmpty(t *testing.T) {
	r := &Report{}
	assert.Equal(t, analyses.SeverityCounts{}, r.SeverityCounts())
}
