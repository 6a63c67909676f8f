package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nxharness/internal/provision"
)

// Report is the JSON document describing one run.
type Report struct {
	RunID       string                 `json:"runId"`
	StartedAt   time.Time              `json:"startedAt"`
	Duration    time.Duration          `json:"duration"`
	Coordinate  string                 `json:"coordinate"`
	Destination string                 `json:"destination,omitempty"`
	ServerURL   string                 `json:"serverUrl,omitempty"`
	Command     string                 `json:"command,omitempty"`
	Steps       []provision.StepTiming `json:"steps,omitempty"`
	ExitCode    int                    `json:"exitCode"`
	Verdict     string                 `json:"verdict"`
	Error       string                 `json:"error,omitempty"`
}

// SaveReport writes the report as a timestamped JSON file into dir,
// creating the directory if needed, and returns the file path.
func SaveReport(dir string, rep Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	filename := fmt.Sprintf("nxharness-report-%s.json", time.Now().Format("20060102-150405"))
	fullPath := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing report file: %w", err)
	}

	return fullPath, nil
}
