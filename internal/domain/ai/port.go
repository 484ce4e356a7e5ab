package ai

import (
	"context"

	"github.com/vinay9977/CodeCritic/internal/domain/analyses"
)

// Analyzer port: one-shot code analysis against a completion endpoint.
//
// AnalyzeCode must always return a well-formed Report when the endpoint is only
// transiently unreachable (the adapter substitutes a deterministic mock result);
// it returns an error for malformed output, quota and auth failures.
//
// QuickScore is advisory only and must never fail: any problem yields the
// neutral default of 50.
type Analyzer interface {
	AnalyzeCode(ctx context.Context, files []analyses.SourceFile, language string) (*Report, error)
	QuickScore(ctx context.Context, snippet, language string) int
}
