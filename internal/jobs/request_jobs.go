package jobs

import (
	"context"
	"time"

	"bloodbridge-backend/internal/logger"
)

// ReportStaleRequests mails every active admin a count of pending requests
// whose donation date has already passed. The requests are left untouched;
// cleanup is an admin decision.
func (jr *JobRunner) ReportStaleRequests() {
	jr.runWithRecovery("ReportStaleRequests", func() {
		ctx := context.Background()

		today := time.Now().UTC().Format("2006-01-02")
		stale, err := jr.store.ListStalePending(ctx, today)
		if err != nil {
			logger.Error("Failed to list stale pending requests", "error", err)
			return
		}
		if len(stale) == 0 {
			logger.Info("No stale pending requests")
			return
		}

		rows, err := jr.db.QueryContext(ctx,
			`SELECT email FROM users WHERE role = 'admin' AND status = 'active' ORDER BY email`)
		if err != nil {
			logger.Error("Failed to list admin recipients", "error", err)
			return
		}
		defer rows.Close()

		var admins []string
		for rows.Next() {
			var email string
			if err := rows.Scan(&email); err != nil {
				logger.Error("Failed to scan admin email", "error", err)
				continue
			}
			admins = append(admins, email)
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating admin emails", "error", err)
			return
		}

		sent := 0
		for _, admin := range admins {
			if err := jr.emailSvc.SendStaleRequestReport(ctx, admin, len(stale)); err != nil {
				logger.Error("Failed to send stale request report", "admin", admin, "error", err)
				continue
			}
			sent++
		}

		logger.Info("Reported stale pending requests", "stale", len(stale), "admins_notified", sent)
	})
}
