// Package claudecli wraps the claude command-line binary.
package claudecli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// Runner executes the claude binary in non-interactive print mode.
type Runner struct {
	Bin     string
	Timeout time.Duration
}

// claudeResponse is the JSON envelope claude emits with --output-format json.
type claudeResponse struct {
	Type       string  `json:"type"`
	Subtype    string  `json:"subtype"`
	IsError    bool    `json:"is_error"`
	DurationMs int     `json:"duration_ms"`
	Result     string  `json:"result"`
	SessionID  string  `json:"session_id"`
	TotalCost  float64 `json:"total_cost_usd"`
}

// Run executes one prompt and returns the result text. The call blocks until
// the binary exits or the runner timeout elapses; no retry is attempted.
func (r Runner) Run(ctx context.Context, prompt string, extraArgs ...string) (string, error) {
	args := []string{"-p", "--output-format", "json"}
	args = append(args, extraArgs...)
	args = append(args, prompt)

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, r.Bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("claude execution failed: %w (output: %s)", err, string(out))
	}

	var response claudeResponse
	if err := json.Unmarshal(out, &response); err != nil {
		// Older CLI versions print raw text; pass it through.
		return string(out), nil
	}
	if response.IsError {
		return "", fmt.Errorf("claude returned error: %s", response.Result)
	}
	return response.Result, nil
}
