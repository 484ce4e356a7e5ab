package analyses

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"critical", SeverityCritical},
		{"Critical", SeverityCritical},
		{"HIGH", SeverityHigh},
		{"Medium", SeverityMedium},
		{"low", SeverityLow},
		{"info", SeverityLow},
		{"", SeverityLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSeverity(tt.in), "input %q", tt.in)
	}
}

func TestSeverityCounts_Add(t *testing.T) {
	var c SeverityCounts
	c.Add(SeverityCritical)
	c.Add(SeverityHigh)
	c.Add(SeverityHigh)
	c.Add(SeverityLow)

	assert.Equal(t, SeverityCounts{Critical: 1, High: 2, Low: 1, Total: 4}, c)
}
