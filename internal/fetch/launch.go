package fetch

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"

	"grabarr/internal/domain/command"
	"grabarr/internal/logging"
)

// launchStrategy is one way of starting the fetch tool. Strategies are tried
// in order; a strategy whose binary is absent yields to the next one, any
// other launch failure is hard.
type launchStrategy struct {
	name string
	bin  string
	pre  []string
}

var launchStrategies = []launchStrategy{
	{name: "binary", bin: command.YTDLP},
	{name: "interpreter", bin: command.Python, pre: []string{command.PyModuleFlag, command.PyModuleName}},
}

// errAllStrategiesMissing reports that no launch strategy found its binary.
var errAllStrategiesMissing = errors.New(
	"fetch tool not found: install yt-dlp or make it importable by python3")

// toolError carries captured error output from a failed tool run.
type toolError struct {
	strategy string
	stderr   string
	err      error
}

func (e *toolError) Error() string {
	if e.stderr == "" {
		return fmt.Sprintf("fetch tool (%s) failed: %v", e.strategy, e.err)
	}
	return fmt.Sprintf("fetch tool (%s) failed: %v: %s", e.strategy, e.err, e.stderr)
}

func (e *toolError) Unwrap() error { return e.err }

// runTool starts the fetch tool, streaming every output line to onLine, and
// waits for it to exit. The binary-absent case falls through to the next
// strategy; non-zero exits return a toolError with the captured stderr tail.
func runTool(ctx context.Context, args []string, onLine func(string)) error {
	for _, strat := range launchStrategies {
		err := runWithStrategy(ctx, strat, args, onLine)
		if errors.Is(err, exec.ErrNotFound) {
			logging.D(1, "Fetch strategy %q not available, trying next", strat.name)
			continue
		}
		return err
	}
	return errAllStrategiesMissing
}

func runWithStrategy(ctx context.Context, strat launchStrategy, args []string, onLine func(string)) error {
	full := make([]string, 0, len(strat.pre)+len(args))
	full = append(full, strat.pre...)
	full = append(full, args...)

	cmd := exec.CommandContext(ctx, strat.bin, full...)

	// Process group so cancellation can also kill tool children.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe error: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe error: %w", err)
	}

	logging.D(1, "Built fetch command: %s", cmd.String())

	if err := cmd.Start(); err != nil {
		// Surfaced as exec.ErrNotFound when the binary is absent.
		return err
	}

	var errTail bytes.Buffer
	done := make(chan struct{})

	go func() {
		defer close(done)
		scanner := bufio.NewScanner(io.MultiReader(stdout, stderr))
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			captureErrTail(&errTail, line)
			onLine(line)
		}
	}()

	<-done
	if err := cmd.Wait(); err != nil {
		return &toolError{strategy: strat.name, stderr: strings.TrimSpace(errTail.String()), err: err}
	}
	return nil
}

// captureErrTail keeps the last few KB of output for error reporting.
func captureErrTail(buf *bytes.Buffer, line string) {
	const maxTail = 4 * 1024
	if buf.Len() > maxTail {
		buf.Reset()
	}
	buf.WriteString(line)
	buf.WriteByte('\n')
}
