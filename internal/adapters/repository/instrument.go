package repository

import (
	"errors"
	"time"

	"github.com/okian/clubhouse/pkg/metrics"
)

// observe records the latency and outcome of one store operation.
func observe(backend, op string, start time.Time, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = metrics.OutcomeNotFound
	case errors.Is(err, ErrDuplicateName):
		outcome = metrics.OutcomeConflict
	case errors.Is(err, ErrInvalidRecord):
		outcome = metrics.OutcomeValidation
	default:
		outcome = metrics.OutcomeError
		metrics.RecordErrorByComponent("repository", op)
	}
	metrics.RecordRepositoryOperation(backend, op, outcome, float64(time.Since(start).Microseconds())/1000)
}
