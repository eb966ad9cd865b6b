package jobs

import (
	"context"

	"bloodbridge-backend/internal/logger"
)

// SweepBlockedSessions revokes provider sessions for every blocked account.
// Blocking already revokes inline; this sweep backstops the case where that
// provider call failed, so a blocked identity cannot outlive the next run.
func (jr *JobRunner) SweepBlockedSessions() {
	jr.runWithRecovery("SweepBlockedSessions", func() {
		ctx := context.Background()

		emails, err := jr.store.ListBlockedEmails(ctx)
		if err != nil {
			logger.Error("Failed to list blocked accounts", "error", err)
			return
		}

		revoked := 0
		for _, email := range emails {
			if err := jr.provider.RevokeSessions(ctx, email); err != nil {
				logger.Error("Failed to revoke sessions for blocked account", "email", email, "error", err)
				continue
			}
			revoked++
		}

		logger.Info("Swept blocked accounts", "blocked", len(emails), "revoked", revoked)
	})
}
