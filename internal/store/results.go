package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonathan/outreach-agent/internal/types"
)

// ResultsDir is the subdirectory of the data directory holding dispatch results.
const ResultsDir = "email_results"

// ResultColumns is the header of the per-row results CSV.
var ResultColumns = []string{
	"success", "recipient", "recipient_name", "company", "subject",
	"message_id", "error", "timestamp", "status",
}

// ResultPaths are the files written for one dispatch run.
type ResultPaths struct {
	Summary string
	Results string
}

// WriteDispatchResults writes the JSON summary and the per-row CSV under
// dir/email_results, tagged with ts.
func WriteDispatchResults(dir string, summary *types.DispatchSummary, ts time.Time) (ResultPaths, error) {
	outDir := filepath.Join(dir, ResultsDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return ResultPaths{}, fmt.Errorf("failed to create %s: %w", outDir, err)
	}
	stamp := ts.Format(TimestampLayout)
	paths := ResultPaths{
		Summary: filepath.Join(outDir, "sending_summary_"+stamp+".json"),
		Results: filepath.Join(outDir, "sending_results_"+stamp+".csv"),
	}

	if summary.Results == nil {
		summary.Results = []types.SendResult{}
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return ResultPaths{}, fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(paths.Summary, data, 0o644); err != nil {
		return ResultPaths{}, fmt.Errorf("failed to write %s: %w", paths.Summary, err)
	}

	rows := make([][]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		rows = append(rows, []string{
			strconv.FormatBool(r.Success), r.Recipient, r.RecipientName, r.Company, r.Subject,
			r.MessageID, r.Error, r.Timestamp.Format(time.RFC3339), string(r.Status),
		})
	}
	if err := writeTable(paths.Results, ResultColumns, rows); err != nil {
		return ResultPaths{}, err
	}
	return paths, nil
}

// readDispatchSummary loads a summary written by WriteDispatchResults.
func readDispatchSummary(path string) (*types.DispatchSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var s types.DispatchSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &s, nil
}
