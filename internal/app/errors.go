package service

import (
	"errors"
	"fmt"

	"github.com/okian/clubhouse/internal/adapters/mq/queue"
)

// Sentinel kinds for service errors. Errors of either kind also match the
// queue error behind them, so transport layers only need the queue kinds.
var (
	// ErrNotStarted reports a job submission before Start or after Stop.
	ErrNotStarted = fmt.Errorf("service not started: %w", queue.ErrClosed)
	// ErrBackpressure reports that the job queue is full. Clients should retry later.
	ErrBackpressure = errors.New("too many pending jobs")
)
