// Package services composes the ledger, report rendering and notification
// delivery into the operations the entrypoints call.
package services

import (
	"context"

	"caixa/internal/core"
	"caixa/internal/ledger"
	"caixa/internal/log"
	"caixa/internal/notify"
)

// BuildReport renders the report text for one period. The scheduled path and
// the /relatorio command both go through here, so their output is identical
// by construction.
func BuildReport(store *ledger.Store, period string) string {
	label := core.PeriodLabel(period)
	entries := store.Query(period)
	if len(entries) == 0 {
		return core.RenderNoData(label)
	}
	return core.RenderReport(label, core.Summarize(entries))
}

// ReportService delivers the periodic report to a fixed chat.
type ReportService struct {
	store          *ledger.Store
	notifier       *notify.Notifier
	target         string
	previousPeriod bool
	logger         *log.Logger
}

func NewReportService(store *ledger.Store, notifier *notify.Notifier, target string, previousPeriod bool, logger *log.Logger) *ReportService {
	return &ReportService{
		store:          store,
		notifier:       notifier,
		target:         target,
		previousPeriod: previousPeriod,
		logger:         logger.WithComponent(log.ComponentNotify),
	}
}

// SendScheduledReport builds and delivers the report for the configured
// period. Delivery failures are logged, not returned: the scheduler loop must
// keep running and the next fire is the retry.
func (rs *ReportService) SendScheduledReport(ctx context.Context) {
	period := rs.store.CurrentPeriod()
	if rs.previousPeriod {
		period = rs.store.PreviousPeriod()
	}
	text := BuildReport(rs.store, period)
	if err := rs.notifier.Send(ctx, rs.target, text); err != nil {
		rs.logger.ErrorContext(ctx, "scheduled report delivery failed",
			log.FieldPeriod, period, log.FieldError, err)
		return
	}
	rs.logger.InfoContext(ctx, "scheduled report delivered", log.FieldPeriod, period)
}
