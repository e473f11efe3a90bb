// Package oracle adapts external transformation capabilities to the
// OracleGateway port.
package oracle

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/koetsu-dev/exemplar/internal/application/port/output"
	"github.com/koetsu-dev/exemplar/internal/interface/external/claudecli"
)

// ClaudeCLIGateway implements OracleGateway by invoking the claude binary.
type ClaudeCLIGateway struct {
	runner claudecli.Runner
}

// NewClaudeCLIGateway creates a gateway around the claude CLI.
// The per-call timeout in the request overrides the default.
func NewClaudeCLIGateway(bin string, timeout time.Duration) *ClaudeCLIGateway {
	if bin == "" {
		bin = "claude"
	}
	return &ClaudeCLIGateway{
		runner: claudecli.Runner{Bin: bin, Timeout: timeout},
	}
}

// Transform runs one oracle invocation. The prompt asks for a single JSON
// document; the requesting stage parses it against its own schema.
func (g *ClaudeCLIGateway) Transform(ctx context.Context, req output.TransformRequest) (*output.TransformResult, error) {
	runner := g.runner
	if req.Timeout > 0 {
		runner.Timeout = req.Timeout
	}

	start := time.Now()
	result, err := runner.Run(ctx, buildPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("oracle %s transform for %s: %w", req.Stage, req.Subject, err)
	}
	return &output.TransformResult{
		Output:   result,
		Duration: time.Since(start),
	}, nil
}

// HealthCheck verifies the claude binary responds.
func (g *ClaudeCLIGateway) HealthCheck(ctx context.Context) error {
	runner := g.runner
	runner.Timeout = 10 * time.Second
	if _, err := runner.Run(ctx, "ping"); err != nil {
		return fmt.Errorf("claude CLI health check failed: %w", err)
	}
	return nil
}

// buildPrompt renders a TransformRequest into a single prompt string with
// named context sections in a fixed order.
func buildPrompt(req output.TransformRequest) string {
	var b strings.Builder
	b.WriteString(req.Prompt)
	b.WriteString("\n\nRespond with a single JSON document and nothing else.\n")

	for _, key := range sortedKeys(req.Context) {
		fmt.Fprintf(&b, "\n--- %s ---\n%s\n", key, req.Context[key])
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
