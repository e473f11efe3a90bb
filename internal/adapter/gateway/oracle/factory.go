package oracle

import (
	"fmt"
	"time"

	"github.com/koetsu-dev/exemplar/internal/application/port/output"
)

// NewOracleGateway creates an oracle gateway for the model selector.
// Supported selectors: claude-cli (default), mock.
// The user is responsible for having the oracle binary installed.
func NewOracleGateway(model, bin string, timeout time.Duration) (output.OracleGateway, error) {
	switch model {
	case "", "claude-cli":
		return NewClaudeCLIGateway(bin, timeout), nil
	case "mock":
		return NewMockGateway(), nil
	default:
		return nil, fmt.Errorf("unknown model selector: %s (supported: claude-cli, mock)", model)
	}
}
