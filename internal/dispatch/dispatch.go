// Package dispatch sends generated outreach emails in bulk, one at a time,
// at a pace the mail provider tolerates.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/outreach-agent/internal/logging"
	"github.com/jonathan/outreach-agent/internal/mailer"
	"github.com/jonathan/outreach-agent/internal/ratelimit"
	"github.com/jonathan/outreach-agent/internal/store"
	"github.com/jonathan/outreach-agent/internal/types"
)

// DryRunMessageID is recorded for messages that were not actually sent.
const DryRunMessageID = "dry_run_id"

// DefaultGeneratedMax is the row cap the send-emails command applies unless told otherwise.
const DefaultGeneratedMax = 10

const progressInterval = 5

// Options controls one bulk run.
type Options struct {
	DryRun bool
	// MaxCount limits the rows processed after the offset; 0 means all.
	MaxCount int
	// StartOffset skips that many rows from the top of the file.
	StartOffset int
	HTML        bool
}

// Config wires a Dispatcher.
type Config struct {
	Transport mailer.Transport
	Sender    types.SenderProfile
	// Pacer spaces consecutive sends.
	Pacer ratelimit.Pacer
	// DataDir holds generated email files and the results directory.
	DataDir string
	Now     func() time.Time
}

// Dispatcher sends rows from a generated-emails file and records the outcome.
type Dispatcher struct {
	transport mailer.Transport
	sender    types.SenderProfile
	pacer     ratelimit.Pacer
	dataDir   string
	now       func() time.Time
}

// New creates a Dispatcher. Transport may be nil for dry runs.
func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		transport: cfg.Transport,
		sender:    cfg.Sender,
		pacer:     cfg.Pacer,
		dataDir:   cfg.DataDir,
		now:       cfg.Now,
	}
	if d.pacer == nil {
		d.pacer = ratelimit.Unlimited()
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// SendGenerated sends from source, or from the newest generated-emails file
// in the data directory when source is empty. A MaxCount of zero sends every row.
func (d *Dispatcher) SendGenerated(ctx context.Context, source string, opts Options) (*types.DispatchSummary, store.ResultPaths, error) {
	if source == "" {
		latest, err := store.LatestGeneratedEmails(d.dataDir)
		if err != nil {
			return nil, store.ResultPaths{}, err
		}
		source = latest
		logging.Info(ctx, "using latest generated emails", zap.String("path", source))
	}
	return d.SendBulk(ctx, source, opts)
}

// SendBulk sends the selected rows of source in file order.
//
// Loading and column validation errors are returned before anything is sent.
// Failures of individual rows are recorded in the summary and never stop the
// run. The summary is persisted even when nothing succeeds.
func (d *Dispatcher) SendBulk(ctx context.Context, source string, opts Options) (*types.DispatchSummary, store.ResultPaths, error) {
	rows, err := store.ReadOutgoing(source)
	if err != nil {
		return nil, store.ResultPaths{}, err
	}
	if !opts.DryRun && d.transport == nil {
		return nil, store.ResultPaths{}, errors.New("live sending requires a mail transport")
	}
	rows = selectRows(rows, opts.StartOffset, opts.MaxCount)

	summary := &types.DispatchSummary{
		RunID:   uuid.NewString(),
		DryRun:  opts.DryRun,
		Results: make([]types.SendResult, 0, len(rows)),
	}
	ctx = logging.WithFields(ctx, zap.String("run_id", summary.RunID), zap.Bool("dry_run", opts.DryRun))
	logging.Info(ctx, "starting bulk send", zap.String("source", source), zap.Int("rows", len(rows)))

	var runErr error
	for i, row := range rows {
		result, err := d.sendOne(ctx, row, opts)
		if err != nil {
			runErr = err
			break
		}
		summary.Record(result)

		if (i+1)%progressInterval == 0 {
			logging.Info(ctx, "send progress",
				zap.Int("processed", i+1),
				zap.Int("total", len(rows)),
				zap.Int("succeeded", summary.SuccessfulSends))
		}
	}

	summary.ProcessedAt = d.now()
	paths, err := store.WriteDispatchResults(d.dataDir, summary, summary.ProcessedAt)
	if err != nil {
		return summary, paths, errors.Join(runErr, err)
	}

	logging.Info(ctx, "bulk send finished",
		zap.Int("processed", summary.TotalProcessed),
		zap.Int("succeeded", summary.SuccessfulSends),
		zap.Int("failed", summary.FailedSends),
		zap.String("summary", paths.Summary))
	return summary, paths, runErr
}

// selectRows applies the offset and then the count.
func selectRows(rows []types.OutgoingEmail, offset, max int) []types.OutgoingEmail {
	if offset > 0 {
		if offset >= len(rows) {
			return nil
		}
		rows = rows[offset:]
	}
	if max > 0 && max < len(rows) {
		rows = rows[:max]
	}
	return rows
}

// sendOne returns an error only when the run must stop.
func (d *Dispatcher) sendOne(ctx context.Context, row types.OutgoingEmail, opts Options) (types.SendResult, error) {
	result := types.SendResult{
		Recipient:     row.Email,
		RecipientName: row.Name,
		Company:       row.Company,
		Subject:       row.Subject,
	}
	failed := func(reason string) types.SendResult {
		result.Status = types.StatusFailed
		result.Error = reason
		result.Timestamp = d.now()
		logging.Warn(ctx, "send failed", zap.String("recipient", row.Email), zap.String("reason", reason))
		return result
	}

	if strings.TrimSpace(row.Email) == "" {
		return failed("missing recipient address"), nil
	}
	msg, err := mailer.Compose(d.sender, row, opts.HTML)
	if err != nil {
		return failed(err.Error()), nil
	}

	// Rows that never reach the transport do not use up the send budget.
	if err := d.pacer.Wait(ctx); err != nil {
		return result, err
	}

	if opts.DryRun {
		result.Success = true
		result.Status = types.StatusDryRun
		result.MessageID = DryRunMessageID
		result.Timestamp = d.now()
		logging.Info(ctx, "dry run, not sent", zap.String("recipient", row.Email), zap.String("subject", row.Subject))
		return result, nil
	}

	id, err := d.deliver(ctx, msg)
	if err != nil {
		return failed(reason(err)), nil
	}
	result.Success = true
	result.Status = types.StatusSent
	result.MessageID = id
	result.Timestamp = d.now()
	logging.Info(ctx, "email sent", zap.String("recipient", row.Email), zap.String("message_id", id))
	return result, nil
}

func (d *Dispatcher) deliver(ctx context.Context, msg *mailer.Message) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transport panic: %v", r)
		}
	}()
	return d.transport.Send(ctx, msg)
}

func reason(err error) string {
	var sendErr *mailer.SendError
	if errors.As(err, &sendErr) {
		return sendErr.Message
	}
	return err.Error()
}
