package jobs

import (
	"context"
	"time"

	"github.com/ailubes/veterans-orden-sub001/internal/logger"
)

// ProcessRecheckQueue drains the eligibility recheck queue: members whose
// subtree changed since their last evaluation get fresh stats and a
// check-and-advance pass. Under approval mode this queues requests rather
// than promoting, so a long recruiter chain advances one bounded step per
// run instead of recursively in one call.
func (jr *JobRunner) ProcessRecheckQueue() {
	jr.runWithRecovery("ProcessRecheckQueue", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		memberIDs, err := jr.queueRepo.DequeueBatch(ctx, jr.config.Progression.RecheckBatchSize)
		if err != nil {
			logger.Error("Failed to dequeue recheck batch", "error", err)
			return
		}
		if len(memberIDs) == 0 {
			return
		}
		logger.Info("Processing eligibility rechecks", "count", len(memberIDs))

		for _, memberID := range memberIDs {
			if _, err := jr.statsSvc.Recalculate(ctx, memberID); err != nil {
				logger.Warn("Recheck stats recalculation failed", "member_id", memberID, "error", err)
				continue
			}
			result, err := jr.advSvc.CheckAndAdvance(ctx, memberID, nil)
			if err != nil {
				logger.Warn("Recheck advancement failed", "member_id", memberID, "error", err)
				continue
			}
			if result.Advanced {
				logger.Info("Recheck advanced member", "member_id", memberID, "new_role", result.NewRole)
			} else if result.Queued {
				logger.Info("Recheck queued approval request", "member_id", memberID)
			}
		}
	})
}
