// Package children manages drone subprocesses: per-guild chatbot
// processes spawned by the manager bot, each wrapping a Discord token and
// a persona prompt.
package children

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Uzidoorman9/Absolute-Solver/internal/logging"
)

// Process is a running child process as the supervisor sees it.
type Process interface {
	Wait() error
	Kill() error
	Pid() int
}

// Launcher starts a child process. Tests substitute a fake; production
// uses ExecLauncher.
type Launcher func(ctx context.Context, binary string, args, env []string) (Process, error)

type execProcess struct{ cmd *exec.Cmd }

func (p *execProcess) Wait() error { return p.cmd.Wait() }
func (p *execProcess) Kill() error { return p.cmd.Process.Kill() }
func (p *execProcess) Pid() int    { return p.cmd.Process.Pid }

// ExecLauncher launches real OS processes.
func ExecLauncher(ctx context.Context, binary string, args, env []string) (Process, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}

// State describes a drone's lifecycle position.
type State string

const (
	StateRunning State = "running"
	StateExited  State = "exited"
)

// Drone is one tracked child process.
type Drone struct {
	ID        string
	Name      string
	Persona   string
	Pid       int
	StartedAt time.Time
	State     State

	// ExitErr is set once State is exited, nil for a clean exit.
	ExitErr error

	cancel context.CancelFunc
	proc   Process
}

// SpawnRequest carries what a new drone needs. The Discord token never
// appears on the command line: it travels in the child environment along
// with the Gemini key.
type SpawnRequest struct {
	Name    string
	Persona string
	Token   string
}

// Config holds the supervisor's fixed settings.
type Config struct {
	// Binary is the drone executable. Empty means "drone" on PATH.
	Binary string

	// GeminiAPIKey and Model are forwarded to every child.
	GeminiAPIKey string
	Model        string

	// MaxActive caps simultaneously running drones. Zero or negative
	// selects the default of 4.
	MaxActive int
}

// Supervisor spawns, tracks, and stops drone processes.
type Supervisor struct {
	mu     sync.RWMutex
	drones map[string]*Drone

	cfg    Config
	launch Launcher
	group  errgroup.Group
}

// NewSupervisor creates a supervisor. launch may be nil to use
// ExecLauncher.
func NewSupervisor(cfg Config, launch Launcher) *Supervisor {
	if cfg.Binary == "" {
		cfg.Binary = "drone"
	}
	if cfg.MaxActive <= 0 {
		cfg.MaxActive = 4
	}
	if launch == nil {
		launch = ExecLauncher
	}
	return &Supervisor{
		drones: make(map[string]*Drone),
		cfg:    cfg,
		launch: launch,
	}
}

func (s *Supervisor) countActive() int {
	n := 0
	for _, d := range s.drones {
		if d.State == StateRunning {
			n++
		}
	}
	return n
}

// Spawn starts a new drone process and begins reaping it in the
// background. It fails when the active limit is reached, when the token
// is missing, or when the process cannot start.
func (s *Supervisor) Spawn(ctx context.Context, req SpawnRequest) (*Drone, error) {
	if req.Token == "" {
		return nil, fmt.Errorf("drone %q: discord token is required", req.Name)
	}
	if req.Name == "" {
		req.Name = "drone"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if active := s.countActive(); active >= s.cfg.MaxActive {
		return nil, fmt.Errorf("max active drones reached: %d", active)
	}

	procCtx, cancel := context.WithCancel(ctx)

	env := append(os.Environ(),
		"DRONE_DISCORD_TOKEN="+req.Token,
		"GEMINI_API_KEY="+s.cfg.GeminiAPIKey,
		"DRONE_MODEL="+s.cfg.Model,
	)
	args := []string{"--persona", req.Persona}

	proc, err := s.launch(procCtx, s.cfg.Binary, args, env)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("launch %s: %w", s.cfg.Binary, err)
	}

	d := &Drone{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Persona:   req.Persona,
		Pid:       proc.Pid(),
		StartedAt: time.Now(),
		State:     StateRunning,
		cancel:    cancel,
		proc:      proc,
	}
	s.drones[d.ID] = d
	logging.Drones("spawned drone %s (%s, pid %d)", d.Name, d.ID, d.Pid)

	s.group.Go(func() error {
		err := proc.Wait()
		s.mu.Lock()
		d.State = StateExited
		d.ExitErr = err
		s.mu.Unlock()
		cancel()
		if err != nil {
			logging.Drones("drone %s exited: %v", d.ID, err)
		} else {
			logging.Drones("drone %s exited cleanly", d.ID)
		}
		// Reaper errors are recorded on the drone, not propagated; one
		// crashed child must not fail the group.
		return nil
	})
	return d, nil
}

// Stop kills one drone by ID. The state check and the kill decision stay
// under the lock so a concurrent reaper marking the drone exited cannot
// interleave.
func (s *Supervisor) Stop(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drones[id]
	if !ok {
		return fmt.Errorf("no such drone %q", id)
	}
	if d.State != StateRunning {
		return nil
	}
	d.cancel()
	return d.proc.Kill()
}

// StopAll kills every running drone and waits for the reapers.
func (s *Supervisor) StopAll() {
	s.mu.Lock()
	for _, d := range s.drones {
		if d.State == StateRunning {
			d.cancel()
			_ = d.proc.Kill()
		}
	}
	s.mu.Unlock()
	_ = s.group.Wait()
}

// List returns a snapshot of every tracked drone, running or exited.
func (s *Supervisor) List() []Drone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Drone, 0, len(s.drones))
	for _, d := range s.drones {
		cp := *d
		cp.cancel = nil
		cp.proc = nil
		out = append(out, cp)
	}
	return out
}
