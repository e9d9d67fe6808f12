package backend

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// stopGrace is how long Stop waits after SIGTERM before killing the engine.
const stopGrace = 10 * time.Second

// Launcher spawns one engine server process and waits until it is healthy.
type Launcher struct {
	Name string // backend kind, used in logs and events
	Bin  string
	// Args returns the command-line arguments for the chosen host and port.
	Args         func(host string, port int) []string
	Host         string
	Port         int // 0 picks a free port
	ReadyTimeout time.Duration

	HTTPClient *http.Client
	Logger     zerolog.Logger
	Publisher  EventPublisher

	mu      sync.Mutex
	cmd     *exec.Cmd
	baseURL string
	pid     int
	ready   bool
	done    chan struct{} // closed when the process exits
	waitErr error
	stderr  *tailBuffer
}

// Start launches the process and blocks until its health probe succeeds.
// It returns the base URL of the engine.
func (l *Launcher) Start(ctx context.Context) (string, error) {
	l.mu.Lock()
	if l.cmd != nil {
		l.mu.Unlock()
		return "", errors.Errorf("%s engine already started", l.Name)
	}
	l.mu.Unlock()

	if l.Publisher == nil {
		l.Publisher = noopPublisher{}
	}
	if l.HTTPClient == nil {
		l.HTTPClient = newUpstreamClient(5 * time.Second)
	}
	host := l.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := l.Port
	if port <= 0 {
		p, err := pickFreePort(host)
		if err != nil {
			return "", errors.Wrap(err, "pick engine port")
		}
		port = p
	}
	baseURL := "http://" + net.JoinHostPort(host, strconv.Itoa(port))

	var args []string
	if l.Args != nil {
		args = l.Args(host, port)
	}
	cmd := exec.Command(l.Bin, args...)
	// Keep a bounded stderr tail for diagnostics on failure.
	tail := newTailBuffer(maxErrorBody)
	cmd.Stderr = tail
	if err := cmd.Start(); err != nil {
		return "", errors.Wrapf(err, "start %s", l.Bin)
	}
	pid := cmd.Process.Pid
	done := make(chan struct{})

	l.mu.Lock()
	l.cmd, l.baseURL, l.pid, l.ready, l.done, l.stderr = cmd, baseURL, pid, false, done, tail
	l.mu.Unlock()

	go func() {
		err := cmd.Wait()
		l.mu.Lock()
		l.waitErr = err
		l.ready = false
		l.mu.Unlock()
		close(done)
	}()

	l.Logger.Info().Str("backend", l.Name).Int("pid", pid).Str("host", host).Int("port", port).Msg("engine spawn")
	l.Publisher.Publish(Event{Name: "spawn_start", Backend: l.Name, Fields: map[string]any{"pid": pid, "host": host, "port": port}})

	if err := waitHealthy(ctx, l.HTTPClient, baseURL, l.ReadyTimeout, done); err != nil {
		if errors.Is(err, errExitedBeforeReady) {
			l.mu.Lock()
			werr := l.waitErr
			l.cmd = nil
			l.mu.Unlock()
			l.Logger.Error().Str("backend", l.Name).Int("pid", pid).AnErr("exit", werr).Msg("engine exited before ready")
			l.Publisher.Publish(Event{Name: "spawn_exit", Backend: l.Name, Fields: map[string]any{"pid": pid, "error": fmt.Sprint(werr)}})
			if werr != nil {
				return "", errors.Errorf("%s exited early: %v; stderr tail: %s", l.Bin, werr, tail.String())
			}
			return "", errors.Errorf("%s exited before ready: %s; stderr tail: %s", l.Bin, baseURL, tail.String())
		}
		l.Logger.Error().Str("backend", l.Name).Int("pid", pid).Err(err).Msg("engine not ready")
		l.Publisher.Publish(Event{Name: "spawn_timeout", Backend: l.Name, Fields: map[string]any{"pid": pid}})
		_ = l.Stop()
		return "", err
	}

	l.mu.Lock()
	l.ready = true
	l.mu.Unlock()
	l.Logger.Info().Str("backend", l.Name).Int("pid", pid).Str("url", baseURL).Msg("engine ready")
	l.Publisher.Publish(Event{Name: "spawn_ready", Backend: l.Name, Fields: map[string]any{"pid": pid, "url": baseURL}})
	return baseURL, nil
}

// Info returns a snapshot of the managed process.
func (l *Launcher) Info() (pid int, baseURL string, ready bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pid, l.baseURL, l.ready
}

// Stop terminates the process: SIGTERM first, then kill after a grace period.
// Calling Stop without a running process is a no-op.
func (l *Launcher) Stop() error {
	l.mu.Lock()
	cmd, done, pid := l.cmd, l.done, l.pid
	l.cmd = nil
	l.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	select {
	case <-done:
		// already gone
	default:
		_ = cmd.Process.Signal(syscall.SIGTERM)
		select {
		case <-done:
		case <-time.After(stopGrace):
			_ = cmd.Process.Kill()
			<-done
		}
	}
	l.Logger.Info().Str("backend", l.Name).Int("pid", pid).Msg("engine stopped")
	l.Publisher.Publish(Event{Name: "spawn_stop", Backend: l.Name, Fields: map[string]any{"pid": pid}})
	return nil
}

func pickFreePort(host string) (int, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return 0, err
	}
	defer ln.Close()
	_, p, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(p)
}

// tailBuffer keeps the last n bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	n   int
	buf []byte
}

func newTailBuffer(n int) *tailBuffer { return &tailBuffer{n: n} }

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.n; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
