package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrUnavailable indicates a transport-level connection or timeout failure.
// Callers recover from this locally by substituting a mock result.
var ErrUnavailable = errors.New("ai endpoint unavailable")

// ErrMalformedResponse indicates the model returned output that is not the
// expected JSON schema. Fatal: the analysis cannot proceed without it.
var ErrMalformedResponse = errors.New("malformed ai response")
