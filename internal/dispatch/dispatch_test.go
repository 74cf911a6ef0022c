package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-agent/internal/mailer"
	"github.com/jonathan/outreach-agent/internal/store"
	"github.com/jonathan/outreach-agent/internal/types"
)

type fakeTransport struct {
	sent []*mailer.Message
	fail map[string]error
}

func (f *fakeTransport) Send(_ context.Context, msg *mailer.Message) (string, error) {
	if err := f.fail[msg.To.Address]; err != nil {
		return "", err
	}
	f.sent = append(f.sent, msg)
	return fmt.Sprintf("id-%d", len(f.sent)), nil
}

func (f *fakeTransport) Check(context.Context) (string, error) { return "asha@example.com", nil }

type countingPacer struct {
	waits     int
	failAfter int
}

func (p *countingPacer) Wait(context.Context) error {
	if p.failAfter > 0 && p.waits >= p.failAfter {
		return context.Canceled
	}
	p.waits++
	return nil
}

var (
	sender    = types.SenderProfile{Name: "Asha Rao", Email: "asha@example.com"}
	fixedTime = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
)

func writeRows(t *testing.T, dir string, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("email,name,company,subject,body\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "hr%d@company%d.com,Person %d,Company %d,Subject %d,Body %d\n", i, i, i, i, i, i)
	}
	path := filepath.Join(dir, "emails.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func newDispatcher(dir string, transport mailer.Transport, pacer *countingPacer) *Dispatcher {
	return New(Config{
		Transport: transport,
		Sender:    sender,
		Pacer:     pacer,
		DataDir:   dir,
		Now:       func() time.Time { return fixedTime },
	})
}

func TestSendBulk_DryRun(t *testing.T) {
	dir := t.TempDir()
	source := writeRows(t, dir, 4)
	transport := &fakeTransport{}
	pacer := &countingPacer{}

	summary, paths, err := newDispatcher(dir, transport, pacer).SendBulk(context.Background(), source, Options{DryRun: true})
	require.NoError(t, err)

	require.Len(t, summary.Results, 4)
	for _, r := range summary.Results {
		assert.Equal(t, types.StatusDryRun, r.Status)
		assert.Equal(t, DryRunMessageID, r.MessageID)
		assert.True(t, r.Success)
	}
	assert.Empty(t, transport.sent)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 100.0, summary.SuccessRate)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 4, pacer.waits)

	data, err := os.ReadFile(paths.Summary)
	require.NoError(t, err)
	var saved types.DispatchSummary
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, summary.RunID, saved.RunID)
	assert.FileExists(t, paths.Results)
	assert.Equal(t, filepath.Join(dir, store.ResultsDir, "sending_summary_20261017_090000.json"), paths.Summary)
}

func TestSendBulk_DryRunNeedsNoTransport(t *testing.T) {
	dir := t.TempDir()
	source := writeRows(t, dir, 2)

	summary, _, err := newDispatcher(dir, nil, &countingPacer{}).SendBulk(context.Background(), source, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SuccessfulSends)

	_, _, err = newDispatcher(dir, nil, &countingPacer{}).SendBulk(context.Background(), source, Options{})
	assert.Error(t, err)
}

func TestSendBulk_MissingBodyColumn(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "emails.csv")
	require.NoError(t, os.WriteFile(source, []byte("email,subject\nhr@x.com,Hi\n"), 0o644))
	transport := &fakeTransport{}

	summary, _, err := newDispatcher(dir, transport, &countingPacer{}).SendBulk(context.Background(), source, Options{})

	var verr *store.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"body"}, verr.Missing)
	assert.Nil(t, summary)
	assert.Empty(t, transport.sent)
	assert.NoDirExists(t, filepath.Join(dir, store.ResultsDir))
}

func TestSendBulk_OffsetThenCount(t *testing.T) {
	dir := t.TempDir()
	source := writeRows(t, dir, 10)
	transport := &fakeTransport{}

	summary, _, err := newDispatcher(dir, transport, &countingPacer{}).SendBulk(context.Background(), source, Options{MaxCount: 3, StartOffset: 2})
	require.NoError(t, err)

	require.Len(t, transport.sent, 3)
	assert.Equal(t, "hr3@company3.com", transport.sent[0].To.Address)
	assert.Equal(t, "hr4@company4.com", transport.sent[1].To.Address)
	assert.Equal(t, "hr5@company5.com", transport.sent[2].To.Address)
	assert.Equal(t, "id-1", summary.Results[0].MessageID)
	assert.Equal(t, types.StatusSent, summary.Results[2].Status)
}

func TestSendBulk_FailuresAreRecorded(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "emails.csv")
	content := "email,name,company,subject,body\n" +
		"ok@a.com,A,A,Hi,Body\n" +
		",B,B,Hi,Body\n" +
		"bad@c.com,C,C,Hi,Body\n" +
		"ok@d.com,D,D,Hi,Body\n"
	require.NoError(t, os.WriteFile(source, []byte(content), 0o644))

	transport := &fakeTransport{fail: map[string]error{
		"bad@c.com": &mailer.SendError{Transport: "gmail", Recipient: "bad@c.com", Message: "Recipient address rejected"},
	}}
	pacer := &countingPacer{}

	summary, _, err := newDispatcher(dir, transport, pacer).SendBulk(context.Background(), source, Options{})
	require.NoError(t, err)

	require.Len(t, summary.Results, 4)
	assert.Equal(t, 2, summary.SuccessfulSends)
	assert.Equal(t, 2, summary.FailedSends)
	assert.Equal(t, 50.0, summary.SuccessRate)
	assert.Equal(t, "missing recipient address", summary.Results[1].Error)
	assert.Equal(t, "Recipient address rejected", summary.Results[2].Error)
	assert.Equal(t, types.StatusFailed, summary.Results[2].Status)
	assert.Len(t, transport.sent, 2)
	assert.Equal(t, 3, pacer.waits)
}

func TestSendBulk_AllFailedStillWritesSummary(t *testing.T) {
	dir := t.TempDir()
	source := writeRows(t, dir, 2)
	transport := &fakeTransport{fail: map[string]error{
		"hr1@company1.com": errors.New("connection reset"),
		"hr2@company2.com": errors.New("connection reset"),
	}}

	summary, paths, err := newDispatcher(dir, transport, &countingPacer{}).SendBulk(context.Background(), source, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.SuccessfulSends)
	assert.Equal(t, "connection reset", summary.Results[0].Error)
	assert.FileExists(t, paths.Summary)
}

func TestSendBulk_CancelledKeepsPartialSummary(t *testing.T) {
	dir := t.TempDir()
	source := writeRows(t, dir, 5)
	transport := &fakeTransport{}

	summary, paths, err := newDispatcher(dir, transport, &countingPacer{failAfter: 2}).SendBulk(context.Background(), source, Options{})

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.TotalProcessed)
	assert.FileExists(t, paths.Summary)
}

func TestSendGenerated_LatestFile(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("email,subject,body\n")
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&b, "hr%d@x.com,Hi,Body\n", i)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "internship_emails_20260101_000000.csv"), []byte("email,subject,body\nold@x.com,Hi,Body\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "internship_emails_20260201_000000.csv"), []byte(b.String()), 0o644))

	tests := []struct {
		name string
		max  int
		want int
	}{
		{"zero sends every row", 0, 12},
		{"explicit cap", DefaultGeneratedMax, DefaultGeneratedMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, _, err := newDispatcher(dir, &fakeTransport{}, &countingPacer{}).
				SendGenerated(context.Background(), "", Options{DryRun: true, MaxCount: tt.max})
			require.NoError(t, err)
			require.Len(t, summary.Results, tt.want)
			assert.Equal(t, "hr1@x.com", summary.Results[0].Recipient)
		})
	}
}

func TestSendGenerated_NoFiles(t *testing.T) {
	_, _, err := newDispatcher(t.TempDir(), nil, &countingPacer{}).SendGenerated(context.Background(), "", Options{DryRun: true})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSelectRows(t *testing.T) {
	rows := make([]types.OutgoingEmail, 5)
	for i := range rows {
		rows[i].Email = fmt.Sprintf("%d", i+1)
	}

	assert.Len(t, selectRows(rows, 0, 0), 5)
	assert.Empty(t, selectRows(rows, 5, 0))
	assert.Equal(t, "5", selectRows(rows, 4, 3)[0].Email)
	assert.Len(t, selectRows(rows, 1, 10), 4)
}
