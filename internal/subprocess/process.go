package subprocess

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/sass-embedded-go/internal/cli"
	"github.com/wagiedev/sass-embedded-go/internal/config"
	"github.com/wagiedev/sass-embedded-go/internal/errors"
	"github.com/wagiedev/sass-embedded-go/internal/framing"
	"github.com/wagiedev/sass-embedded-go/internal/message"
)

const (
	// maxStderrBufferSize is the maximum size for the stderr buffer.
	// Stderr reading continues indefinitely (callback receives all lines),
	// but the buffer stops growing after this limit to prevent unbounded memory usage.
	maxStderrBufferSize = 10 * 1024 * 1024 // 10MB

	// exitGracePeriod is how long a reader that hit EOF waits for the
	// process to exit before reporting the EOF without an exit status.
	exitGracePeriod = 2 * time.Second
)

type frame struct {
	msg message.OutboundMessage
	err error
}

// ProcessTransport implements Transport by spawning the compiler as a subprocess.
type ProcessTransport struct {
	log            *slog.Logger
	options        *config.Options
	compilerPath   string
	args           []string
	env            []string
	cwd            string
	cmd            *exec.Cmd
	stdin          io.WriteCloser
	writer         *framing.Writer
	protocol       message.Protocol
	stderrCallback func(string)

	frames     chan frame
	done       chan struct{} // closed by Close
	readDone   chan struct{} // closed once stdout is no longer read
	stderrDone chan struct{} // closed once stderr hits EOF
	exited     chan struct{} // closed once the process has been waited for
	group      errgroup.Group

	stderrMu     sync.Mutex
	stderrBuffer strings.Builder
	waitErr      error

	mu          sync.Mutex // Protects stdin writes and the flags below
	closing     bool       // Whether Close() has been called (intentional shutdown)
	stdinClosed bool       // Whether stdin was closed (e.g., due to context cancellation)
	closeOnce   sync.Once
}

// Compile-time verification that ProcessTransport implements the Transport interface.
var _ config.Transport = (*ProcessTransport)(nil)

// NewProcessTransport creates a new process transport.
//
// Compiler discovery is deferred to Start(), which searches for the compiler
// binary as described in the cli package. Start() returns
// CompilerNotFoundError if the binary cannot be located.
func NewProcessTransport(log *slog.Logger, options *config.Options) *ProcessTransport {
	return &ProcessTransport{
		log:            log.With("component", "process_transport"),
		options:        options,
		stderrCallback: options.Stderr,
		frames:         make(chan frame),
		done:           make(chan struct{}),
		readDone:       make(chan struct{}),
		stderrDone:     make(chan struct{}),
		exited:         make(chan struct{}),
	}
}

// Start discovers the compiler, spawns it and starts the stdout and stderr
// readers. The context bounds discovery only; the process lives until Close.
//
// Returns CompilerNotFoundError if the binary cannot be located,
// or ConnectionError if the process fails to start.
func (t *ProcessTransport) Start(ctx context.Context) error {
	t.log.Info("Starting embedded Sass compiler")

	discoverer := cli.NewDiscoverer(&cli.Config{
		CompilerPath: t.options.CompilerPath,
		Logger:       t.log,
	})

	compilerPath, err := discoverer.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover compiler: %w", err)
	}

	t.compilerPath = compilerPath
	t.protocol = cli.SelectProtocol(compilerPath, t.options.Protocol)
	t.args = cli.BuildArgs(compilerPath, t.options)
	t.env = cli.BuildEnvironment(t.options)

	t.cwd = t.options.Cwd
	if t.cwd == "" {
		t.cwd, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
	}

	t.log.Debug("Built compiler command",
		"path", compilerPath, "args", t.args, "cwd", t.cwd, "protocol", t.protocol.String())

	//nolint:gosec // G204: launching the discovered compiler is the point
	cmd := exec.Command(t.compilerPath, t.args...)
	cmd.Dir = t.cwd
	cmd.Env = t.env

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &errors.ConnectionError{Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &errors.ConnectionError{Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &errors.ConnectionError{Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		t.log.Error("Failed to start compiler process", "error", err)

		return &errors.ConnectionError{Err: fmt.Errorf("start process: %w", err)}
	}

	t.cmd = cmd
	t.stdin = stdin
	t.writer = framing.NewWriter(stdin, t.options.MaxMessageSize, t.log)

	reader := framing.NewReader(stdout, t.options.MaxMessageSize, t.log)

	t.group.Go(func() error {
		defer close(t.stderrDone)

		t.pumpStderr(stderr)

		return nil
	})

	t.group.Go(func() error {
		t.readFrames(reader)

		return nil
	})

	// Both pipes must be drained before Wait closes them.
	t.group.Go(func() error {
		<-t.readDone
		<-t.stderrDone

		t.waitErr = cmd.Wait()
		close(t.exited)

		return nil
	})

	t.log.Info("Embedded Sass compiler started", "pid", cmd.Process.Pid)

	return nil
}

func (t *ProcessTransport) pumpStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		t.stderrMu.Lock()

		if t.stderrBuffer.Len() < maxStderrBufferSize {
			if t.stderrBuffer.Len() > 0 {
				t.stderrBuffer.WriteString("\n")
			}

			t.stderrBuffer.WriteString(line)
		}

		t.stderrMu.Unlock()

		if t.stderrCallback != nil {
			t.stderrCallback(line)
		}
	}

	if err := scanner.Err(); err != nil {
		t.log.Debug("Stderr scanner error", "error", err)
	}
}

// readFrames decodes frames from stdout until the stream ends, a frame is
// malformed, or the transport is closed.
func (t *ProcessTransport) readFrames(reader *framing.Reader) {
	stopReading := sync.OnceFunc(func() {
		close(t.readDone)
		t.log.Debug("Frame reader stopped")
	})
	defer stopReading()

	for {
		compilationID, payload, err := t.readFrame(reader)
		if stderrors.Is(err, framing.ErrInvalidPacketID) {
			stopReading()
			t.deliver(frame{err: &errors.MessageParseError{Message: "decode packet header", Err: err}})

			return
		}

		if err != nil {
			stopReading()
			t.deliver(frame{err: t.readError(err)})

			return
		}

		msg, err := message.UnmarshalOutboundPacket(compilationID, payload, t.protocol)
		if err != nil {
			stopReading()
			t.deliver(frame{err: &errors.MessageParseError{Message: "decode outbound message", Err: err}})

			return
		}

		if !t.deliver(frame{msg: msg}) {
			return
		}
	}
}

// readFrame reads one frame in the negotiated dialect. Protocol 1 frames
// carry no compilation id and report 0.
func (t *ProcessTransport) readFrame(reader *framing.Reader) (uint32, []byte, error) {
	if t.protocol.Framed() {
		return reader.ReadPacket()
	}

	payload, err := reader.ReadMessage()

	return 0, payload, err
}

func (t *ProcessTransport) writeFrame(compilationID uint32, payload []byte) error {
	if t.protocol.Framed() {
		return t.writer.WritePacket(compilationID, payload)
	}

	return t.writer.WriteMessage(payload)
}

func (t *ProcessTransport) deliver(f frame) bool {
	select {
	case t.frames <- f:
		return true
	case <-t.done:
		return false
	}
}

// readError turns a stdout read failure into a ProcessError when the
// compiler exited abnormally.
func (t *ProcessTransport) readError(err error) error {
	select {
	case <-t.exited:
	case <-t.done:
	case <-time.After(exitGracePeriod):
	}

	t.mu.Lock()
	closing := t.closing
	t.mu.Unlock()

	if closing {
		return &errors.TransportError{Op: "receive", Err: errors.ErrTransportClosed}
	}

	select {
	case <-t.exited:
	default:
		return &errors.TransportError{Op: "receive", Err: err}
	}

	if t.waitErr == nil {
		return &errors.TransportError{Op: "receive", Err: fmt.Errorf("compiler exited: %w", err)}
	}

	t.stderrMu.Lock()
	stderrOutput := cleanStderr(t.stderrBuffer.String())
	t.stderrMu.Unlock()

	exitCode := 0

	if exitErr, ok := stderrors.AsType[*exec.ExitError](t.waitErr); ok {
		exitCode = exitErr.ExitCode()
	}

	t.log.Error("Compiler process exited with error", "exit_code", exitCode, "stderr", stderrOutput)

	return &errors.TransportError{Op: "receive", Err: &errors.ProcessError{
		ExitCode: exitCode,
		Stderr:   stderrOutput,
		Err:      t.waitErr,
	}}
}

// Send writes one framed message to the compiler's stdin.
//
// This method is safe for concurrent use and respects context cancellation
// even during blocking writes. If the context is cancelled during a blocked
// write, stdin is closed to unblock it; the stream is then unusable.
func (t *ProcessTransport) Send(ctx context.Context, msg message.InboundMessage) error {
	compilationID, payload, err := message.MarshalInboundPacket(msg, t.protocol)
	if err != nil {
		return fmt.Errorf("encode inbound message: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.writer == nil {
		return &errors.TransportError{Op: "send", Err: errors.ErrCompilerNotStarted}
	}

	if t.stdinClosed {
		return &errors.TransportError{Op: "send", Err: errors.ErrTransportClosed}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)

	go func() {
		done <- t.writeFrame(compilationID, payload)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.log.Error("Failed to write message to compiler", "error", err)

			return &errors.TransportError{Op: "send", Err: err}
		}

		return nil

	case <-ctx.Done():
		t.log.Debug("Context cancelled during write, closing stdin")

		_ = t.stdin.Close()
		t.stdinClosed = true

		select {
		case <-done:
		case <-time.After(1 * time.Second):
			t.log.Warn("Write goroutine did not exit after stdin close, potential leak")
		}

		return ctx.Err()
	}
}

// Protocol reports the wire dialect chosen by Start.
func (t *ProcessTransport) Protocol() message.Protocol {
	return t.protocol
}

// Receive blocks until the compiler sends a message. If ctx is cancelled
// first, the transport is closed, since a half-read exchange cannot be
// resumed.
func (t *ProcessTransport) Receive(ctx context.Context) (message.OutboundMessage, error) {
	if t.writer == nil {
		return nil, &errors.TransportError{Op: "receive", Err: errors.ErrCompilerNotStarted}
	}

	select {
	case f := <-t.frames:
		return f.msg, f.err
	case <-t.done:
		return nil, &errors.TransportError{Op: "receive", Err: errors.ErrTransportClosed}
	case <-ctx.Done():
		t.log.Debug("Context cancelled during receive, closing transport")

		_ = t.Close()

		return nil, ctx.Err()
	}
}

// Close terminates the compiler process and waits for the reader goroutines.
// It's safe to call Close multiple times or on a transport never started.
func (t *ProcessTransport) Close() error {
	var err error

	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closing = true
		t.stdinClosed = true
		t.mu.Unlock()

		close(t.done)

		if t.cmd != nil && t.cmd.Process != nil {
			t.log.Debug("Killing compiler process", "pid", t.cmd.Process.Pid)

			if killErr := t.cmd.Process.Kill(); killErr != nil && !stderrors.Is(killErr, os.ErrProcessDone) {
				err = fmt.Errorf("kill compiler process (pid %d): %w", t.cmd.Process.Pid, killErr)
			}
		}

		_ = t.group.Wait()
	})

	return err
}

// cleanStderr drops Dart VM stack frame lines ("#3      main (file:///...)")
// from stderr output, keeping the error messages around them.
func cleanStderr(stderr string) string {
	if stderr == "" {
		return ""
	}

	var cleaned strings.Builder

	for line := range strings.SplitSeq(stderr, "\n") {
		if isStackFrameLine(strings.TrimSpace(line)) {
			continue
		}

		if cleaned.Len() > 0 {
			cleaned.WriteString("\n")
		}

		cleaned.WriteString(line)
	}

	return strings.TrimSpace(cleaned.String())
}

// isStackFrameLine checks if a line is a Dart stack frame: "#<n> <frame>".
func isStackFrameLine(line string) bool {
	rest, ok := strings.CutPrefix(line, "#")
	if !ok {
		return false
	}

	digits, _, ok := strings.Cut(rest, " ")
	if !ok || digits == "" {
		return false
	}

	for _, ch := range digits {
		if ch < '0' || ch > '9' {
			return false
		}
	}

	return true
}
