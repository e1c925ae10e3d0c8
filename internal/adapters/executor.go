package adapters

import (
	"context"
	"os/exec"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"purl2src/internal/ports"
	"purl2src/internal/shared"
)

const defaultCommandTimeout = 30 * time.Second

// SubprocessExecutorAdapter runs package-manager fallback commands.
// Commands are argument vectors executed directly, never through a
// shell, so PURL-derived values cannot be interpreted as shell syntax.
type SubprocessExecutorAdapter struct {
	Timeout time.Duration
}

func NewSubprocessExecutorAdapter(timeoutSec int) SubprocessExecutorAdapter {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	return SubprocessExecutorAdapter{Timeout: timeout}
}

func (a SubprocessExecutorAdapter) IsAvailable(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

// Run executes argv with a hard timeout and returns combined output.
// A non-zero exit or a kill on deadline both surface as errors with
// the command output attached.
func (a SubprocessExecutorAdapter) Run(ctx context.Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty command")
	}
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	log.Ctx(ctx).Debug().Str("command", shared.ShellJoin(argv)).Msg("running fallback command")
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("fallback command failed").
			WithCause(shared.CommandError(output, err))
	}
	return string(output), nil
}

var _ ports.ExecutorPort = SubprocessExecutorAdapter{}
