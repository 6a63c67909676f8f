package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"nxharness/internal/history"
	pkgstrings "nxharness/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderHistoryTable writes past runs as a rounded table, newest first.
func RenderHistoryTable(w io.Writer, records []history.RunRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No recorded runs")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"STARTED", "DURATION", "COORDINATE", "COMMAND", "EXIT", "VERDICT", "ERROR"})

	for _, rec := range records {
		t.AppendRow(table.Row{
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Duration.Round(time.Second),
			rec.Coordinate,
			rec.Command,
			rec.ExitCode,
			verdictCell(rec.Verdict),
			pkgstrings.Truncate(rec.Error, pkgstrings.DefaultErrorMaxLen),
		})
	}

	t.Render()
}

func verdictCell(verdict string) string {
	switch verdict {
	case history.VerdictPassed:
		return text.FgGreen.Sprint(verdict)
	case history.VerdictFailed:
		return text.FgRed.Sprint(verdict)
	case history.VerdictError:
		return text.FgHiRed.Sprint(verdict)
	default:
		return verdict
	}
}

// RenderHistoryJSON writes past runs as an indented JSON array.
func RenderHistoryJSON(w io.Writer, records []history.RunRecord) error {
	type jsonRecord struct {
		ID         string        `json:"id"`
		StartedAt  time.Time     `json:"startedAt"`
		Duration   time.Duration `json:"duration"`
		Coordinate string        `json:"coordinate"`
		ServerURL  string        `json:"serverUrl,omitempty"`
		Command    string        `json:"command"`
		ExitCode   int           `json:"exitCode"`
		Verdict    string        `json:"verdict"`
		Error      string        `json:"error,omitempty"`
	}

	out := make([]jsonRecord, len(records))
	for i, rec := range records {
		out[i] = jsonRecord(rec)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
