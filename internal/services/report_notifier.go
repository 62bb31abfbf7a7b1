package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/bossbruno/quick-bundles-notifications/internal/models"
	"github.com/bossbruno/quick-bundles-notifications/pkg/metrics"
)

// ReportNotifier emails the operations inbox when a user files a report.
// There is no write-back; a failure propagates to the hosting consumer.
type ReportNotifier struct {
	sender  EmailSender
	from    string
	to      string
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewReportNotifier(sender EmailSender, from, to string, m *metrics.Metrics, logger *slog.Logger) *ReportNotifier {
	return &ReportNotifier{
		sender:  sender,
		from:    from,
		to:      to,
		metrics: m,
		logger:  logger,
	}
}

// Notify sends one email for a freshly created report. With no recipient
// configured the event is skipped silently.
func (r *ReportNotifier) Notify(ctx context.Context, report *models.Report) error {
	if r.to == "" {
		r.logger.Debug("report email skipped, no recipient configured",
			slog.String("report_id", report.ID))
		return nil
	}

	subject := fmt.Sprintf("New report: %s", report.Reason)
	body := fmt.Sprintf(
		`<p>A new report was filed.</p>
<ul>
<li>Report: %s</li>
<li>Reporter: %s</li>
<li>Subject: %s</li>
<li>Reason: %s</li>
</ul>
<p>%s</p>`,
		html.EscapeString(report.ID),
		html.EscapeString(report.ReporterID),
		html.EscapeString(report.SubjectID),
		html.EscapeString(report.Reason),
		html.EscapeString(report.Detail),
	)

	if err := r.sender.Send(ctx, r.from, r.to, subject, body); err != nil {
		return fmt.Errorf("report email for %s: %w", report.ID, err)
	}

	r.metrics.IncEmails()
	r.logger.Info("report email sent", slog.String("report_id", report.ID))
	return nil
}
