// Package supervisor owns the child process of a run.
//
// The child's stdout and stderr are merged into one pipe and read line by
// line in the caller's goroutine, so lines are seen in the order the child
// wrote them. Interrupts are relayed from a separate goroutine that only
// touches the child and the supervisor state:
//
//	running --interrupt--> stop-requested --interrupt--> force-killed
//
// The first interrupt is forwarded to the child and streaming continues so
// late diagnostics are still read. The second kills the child and hands
// control to Options.OnForceKill, which is expected to exit the tool.
package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/sync/errgroup"

	"eer/internal/trace"
)

// ForceKillExitCode is the tool's exit status after a double interrupt.
const ForceKillExitCode = 4

// InterruptNotice is printed on the first interrupt.
const InterruptNotice = "Caught interrupt, forwarding (press again to exit immediately)"

// ErrSpawn reports a command that could not be started.
var ErrSpawn = errors.New("cannot start command")

// State is the interrupt escalation state.
type State int32

const (
	StateRunning State = iota
	StateStopRequested
	StateForceKilled
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopRequested:
		return "stop-requested"
	case StateForceKilled:
		return "force-killed"
	default:
		return "unknown"
	}
}

// Options configures Start.
type Options struct {
	Argv []string
	// Stdin is handed to the child; nil means the tool's stdin.
	Stdin io.Reader
	// Notice receives the one-line interrupt notice; nil means stdout.
	Notice io.Writer
	// Signals overrides the interrupt source; nil subscribes to os.Interrupt.
	Signals <-chan os.Signal
	// OnForceKill runs after the child was killed by a second interrupt.
	OnForceKill func()
}

// Supervisor runs one child process.
type Supervisor struct {
	cmd    *exec.Cmd
	pipe   *os.File
	out    *bufio.Reader
	opts   Options
	tracer trace.Tracer

	state     atomic.Int32
	signals   <-chan os.Signal
	owned     chan os.Signal
	done      chan struct{}
	relayDone chan struct{}
	closeOnce sync.Once

	waitOnce sync.Once
	code     int
	waitErr  error
}

// Start spawns the child with its combined output captured.
func Start(ctx context.Context, opts Options) (*Supervisor, error) {
	if len(opts.Argv) == 0 || opts.Argv[0] == "" {
		return nil, fmt.Errorf("%w: empty command", ErrSpawn)
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Notice == nil {
		opts.Notice = os.Stdout
	}
	tracer := trace.FromContext(ctx)

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: output pipe: %w", ErrSpawn, err)
	}
	cmd := exec.Command(opts.Argv[0], opts.Argv[1:]...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = pw
	cmd.Stderr = pw

	s := &Supervisor{
		cmd:       cmd,
		pipe:      pr,
		out:       bufio.NewReaderSize(pr, 64*1024),
		opts:      opts,
		tracer:    tracer,
		done:      make(chan struct{}),
		relayDone: make(chan struct{}),
	}
	s.signals = opts.Signals
	if s.signals == nil {
		s.owned = make(chan os.Signal, 2)
		signal.Notify(s.owned, os.Interrupt)
		s.signals = s.owned
	}

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		_ = pr.Close()
		if s.owned != nil {
			signal.Stop(s.owned)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, opts.Argv[0], err)
	}
	// the child holds its own copy of the write end
	_ = pw.Close()

	trace.Point(tracer, trace.ScopeRun, "spawn", fmt.Sprintf("pid=%d %s", cmd.Process.Pid, strings.Join(opts.Argv, " ")))

	go s.relay()
	return s, nil
}

// State returns the current escalation state.
func (s *Supervisor) State() State {
	return State(s.state.Load())
}

func (s *Supervisor) relay() {
	defer close(s.relayDone)
	for {
		select {
		case <-s.done:
			return
		case _, ok := <-s.signals:
			if !ok {
				return
			}
			s.interrupt()
		}
	}
}

func (s *Supervisor) interrupt() {
	if s.state.CompareAndSwap(int32(StateRunning), int32(StateStopRequested)) {
		fmt.Fprintln(s.opts.Notice, InterruptNotice)
		err := s.cmd.Process.Signal(os.Interrupt)
		trace.Point(s.tracer, trace.ScopeStream, "interrupt", errDetail("forwarded", err))
		return
	}
	if s.state.CompareAndSwap(int32(StateStopRequested), int32(StateForceKilled)) {
		err := s.cmd.Process.Kill()
		trace.Point(s.tracer, trace.ScopeStream, "force-kill", errDetail("killed", err))
		if s.opts.OnForceKill != nil {
			s.opts.OnForceKill()
		}
	}
}

func errDetail(ok string, err error) string {
	if err != nil {
		return err.Error()
	}
	return ok
}

// ReadLine returns the next line of combined output including its newline.
// The last line may lack one. io.EOF is returned once the output is closed.
func (s *Supervisor) ReadLine() (string, error) {
	line, err := s.out.ReadString('\n')
	if err != nil {
		if errors.Is(err, os.ErrClosed) {
			err = io.EOF
		}
		if line != "" && errors.Is(err, io.EOF) {
			return line, nil
		}
		return line, err
	}
	return line, nil
}

// Stream feeds every output line to fn until EOF or until fn asks to stop.
// It reports whether it stopped early.
func (s *Supervisor) Stream(fn func(line string) (stop bool)) (bool, error) {
	for {
		line, err := s.ReadLine()
		if line != "" && fn(line) {
			return true, nil
		}
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("read output: %w", err)
		}
	}
}

// Finish copies the rest of the output to w, each line passed through
// render when it is non-nil, while waiting for the child to exit.
func (s *Supervisor) Finish(w io.Writer, render func(string) string) (int, error) {
	var (
		g    errgroup.Group
		code int
	)
	g.Go(func() error {
		_, err := s.Stream(func(line string) bool {
			if render != nil {
				line = render(line)
			}
			_, _ = io.WriteString(w, line)
			return false
		})
		return err
	})
	g.Go(func() error {
		c, err := s.Wait()
		code = c
		return err
	})
	err := g.Wait()
	return code, err
}

// Wait waits for the child and returns its exit status. A child killed by
// a signal reports 128+signal. Repeated calls return the first result.
func (s *Supervisor) Wait() (int, error) {
	s.waitOnce.Do(func() {
		s.code, s.waitErr = exitStatus(s.cmd.Wait())
		trace.Point(s.tracer, trace.ScopeRun, "exit", fmt.Sprintf("status=%d", s.code))
	})
	return s.code, s.waitErr
}

func exitStatus(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
		return exitErr.ExitCode(), nil
	}
	return 1, err
}

// Close stops relaying interrupts and releases the output pipe.
// It does not wait for the child.
func (s *Supervisor) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.owned != nil {
			signal.Stop(s.owned)
		}
		close(s.done)
		<-s.relayDone
		err = s.pipe.Close()
	})
	return err
}
