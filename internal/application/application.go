// Package application holds the store's use cases. Each one is a UseCase whose Execute
// is wrapped in a Run: one span, RED metrics and a single use_case_done log line.
package application

import "context"

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

// Use case outcomes reported on usecase_requests_total.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)
