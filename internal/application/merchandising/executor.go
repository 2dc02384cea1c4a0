package merchandising

import (
	"context"
	"fmt"

	"github.com/curator/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// CurationExecutor adapts the processor to the scheduler's job contract:
// window jobs sweep a trailing window, product jobs curate one
// webhook-delivered product.
type CurationExecutor struct {
	processor *Processor
	logger    *zap.Logger
}

// NewCurationExecutor creates the executor the sync scheduler runs jobs on
func NewCurationExecutor(processor *Processor, logger *zap.Logger) *CurationExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CurationExecutor{
		processor: processor,
		logger:    logger,
	}
}

var _ scheduler.SyncExecutor = (*CurationExecutor)(nil)

// Execute runs one sync job and reports its counts. Write failures inside a
// job are already retried by the collection writer and recorded as skips;
// an error return here means the job itself could not run and the scheduler
// should apply its retry policy.
func (e *CurationExecutor) Execute(ctx context.Context, job *scheduler.SyncJob) (scheduler.SyncOutcome, error) {
	switch job.Kind {
	case scheduler.KindProduct:
		if job.Product == nil {
			return scheduler.SyncOutcome{}, fmt.Errorf("product job %s has no product payload", job.ID)
		}
		result, err := e.processor.ProcessProduct(ctx, *job.Product)
		if err != nil {
			return scheduler.SyncOutcome{}, err
		}
		return scheduler.SyncOutcome{
			Products: 1,
			Assigned: result.Written,
			Skipped:  len(result.Failures),
		}, nil

	case scheduler.KindWindow:
		result, err := e.processor.ProcessWindow(ctx, job.Since)
		if err != nil {
			return scheduler.SyncOutcome{}, err
		}
		outcome := scheduler.SyncOutcome{Products: result.TotalProducts}
		for _, pr := range result.Products {
			outcome.Assigned += pr.Written
			outcome.Skipped += len(pr.Failures)
		}
		return outcome, nil

	default:
		return scheduler.SyncOutcome{}, fmt.Errorf("unknown sync job kind %q", job.Kind)
	}
}
