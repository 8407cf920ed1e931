package git

import (
	"context"
	"io"
	"os/exec"
	"strings"

	cverrors "github.com/masmgr/changever/internal/errors"
)

// debugLogger logs the git invocations when verbose output is enabled.
// By default, it's a no-op.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git invocations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// CLIRunner runs git log as a subprocess.
//
// Anything written to stderr is fatal: the process is killed as soon as the
// first byte arrives and the stderr content becomes the error message, even
// when git would have gone on to exit 0.
type CLIRunner struct {
	// Binary is the executable to run. Defaults to "git".
	Binary string
}

type readResult struct {
	data []byte
	err  error
}

// RunLogQuery runs `git -C repoPath <args>` and returns its stdout.
func (r *CLIRunner) RunLogQuery(ctx context.Context, repoPath string, args []string) ([]byte, error) {
	bin := r.Binary
	if bin == "" {
		bin = "git"
	}

	fullArgs := append([]string{"-C", repoPath}, args...)
	logDebug("[git] %s %s", bin, strings.Join(fullArgs, " "))

	cmd := exec.CommandContext(ctx, bin, fullArgs...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, cverrors.Wrap(err, cverrors.Extraction, "opening git stdout")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, cverrors.Wrap(err, cverrors.Extraction, "opening git stderr")
	}

	if err := cmd.Start(); err != nil {
		return nil, cverrors.Wrap(err, cverrors.Extraction, "starting "+bin)
	}

	outCh := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(stdout)
		outCh <- readResult{data: data, err: err}
	}()

	// firstErr receives the first stderr chunk (nil on a clean EOF);
	// restErr receives whatever follows it.
	firstErr := make(chan []byte, 1)
	restErr := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := stderr.Read(buf)
			if n > 0 {
				firstErr <- buf[:n]
				rest, _ := io.ReadAll(stderr)
				restErr <- rest
				return
			}
			if err != nil {
				firstErr <- nil
				restErr <- nil
				return
			}
		}
	}()

	var out readResult
	outDone := false
	select {
	case msg := <-firstErr:
		if len(msg) > 0 {
			return nil, killOnStderr(cmd, msg, restErr)
		}
	case out = <-outCh:
		outDone = true
		if msg := <-firstErr; len(msg) > 0 {
			return nil, killOnStderr(cmd, msg, restErr)
		}
	}
	<-restErr
	if !outDone {
		out = <-outCh
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, cverrors.Wrap(ctx.Err(), cverrors.Extraction, "git log interrupted")
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, cverrors.NewExtractionError("git log exited with code %d", exitErr.ExitCode())
		}
		return nil, cverrors.Wrap(err, cverrors.Extraction, "waiting for git")
	}
	if out.err != nil {
		return nil, cverrors.Wrap(out.err, cverrors.Extraction, "reading git output")
	}

	return out.data, nil
}

// killOnStderr terminates the process, drains what is left on stderr and
// reaps the process before building the error.
func killOnStderr(cmd *exec.Cmd, first []byte, rest <-chan []byte) error {
	_ = cmd.Process.Kill()
	msg := string(first) + string(<-rest)
	_ = cmd.Wait()
	return cverrors.NewExtractionError("git log: %s", strings.TrimSpace(msg))
}
