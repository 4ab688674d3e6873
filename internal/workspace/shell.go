package workspace

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/wagiedev/agent-protocol-go/internal/agent"
)

// Compile-time verification that Shell implements agent.Executor.
var _ agent.Executor = (*Shell)(nil)

const (
	defaultPollInterval = 100 * time.Millisecond
	maxLineSize         = 1024 * 1024
)

// Shell is an Executor that runs each instruction as a shell command.
//
// Every output line is reported as progress. Cancellation is polled between
// lines and on a fixed interval while the command is silent; the process is
// killed only after cancellation has been observed.
type Shell struct {
	log          *slog.Logger
	dir          string
	pollInterval time.Duration
}

// NewShell creates a Shell that runs commands in dir.
func NewShell(log *slog.Logger, dir string) *Shell {
	return &Shell{
		log:          log.With("component", "shell"),
		dir:          dir,
		pollInterval: defaultPollInterval,
	}
}

// Execute runs instruction and returns the tail of its output as the result message.
func (s *Shell) Execute(ctx context.Context, instruction string, opts agent.ExecuteOptions) (agent.ExecuteResult, error) {
	procCtx, kill := context.WithCancel(context.WithoutCancel(ctx))
	defer kill()

	//nolint:gosec // G204: instructions are shell command lines by definition
	cmd := exec.CommandContext(procCtx, "sh", "-c", instruction)
	cmd.Dir = s.dir
	cmd.WaitDelay = time.Second

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		return agent.ExecuteResult{}, fmt.Errorf("start command: %w", err)
	}

	s.log.Debug("Started command", "pid", cmd.Process.Pid)

	waitErr := make(chan error, 1)

	go func() {
		err := cmd.Wait()
		_ = pw.Close()
		waitErr <- err
	}()

	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		for scanner.Scan() {
			lines <- scanner.Text()
		}

		// Unblock the writer if the scanner gave up early.
		_, _ = io.Copy(io.Discard, pr)
	}()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var (
		last      string
		cancelled bool
	)

	for open := true; open; {
		select {
		case line, ok := <-lines:
			if !ok {
				open = false

				break
			}

			last = line

			if opts.OnProgress != nil {
				opts.OnProgress(line)
			}
		case <-ticker.C:
		}

		if !cancelled && opts.CheckCancellation != nil && opts.CheckCancellation() {
			s.log.Debug("Cancellation observed, stopping command")

			cancelled = true

			kill()
		}
	}

	err := <-waitErr

	if cancelled {
		return agent.ExecuteResult{Message: "Operation cancelled"}, nil
	}

	if err != nil {
		return agent.ExecuteResult{}, fmt.Errorf("command failed: %w", err)
	}

	if last = strings.TrimSpace(last); last == "" {
		last = "Command completed"
	}

	return agent.ExecuteResult{Message: last}, nil
}
