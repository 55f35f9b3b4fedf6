package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/triplestack/internal/core"
	"github.com/vovakirdan/triplestack/internal/prefs"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.triplestack/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the simulation rate of every session.
	TickRate int
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		TickRate:    core.DefaultConfig().TickRate,
	}
}

// SSHServer wraps a Wish SSH server that runs one Triple Stack session per connection.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	svc    Services
}

// NewSSHServer creates a new SSH server. The stores in svc are shared by all
// sessions; preferences are kept per session in memory.
func NewSSHServer(cfg SSHServerConfig, svc Services) (*SSHServer, error) {
	svc.Logger = svc.logger().WithPrefix("ssh")
	srv := &SSHServer{
		config: cfg,
		svc:    svc,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("tui: cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".triplestack", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", err)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.svc.Logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
	}

	svc := s.svc
	svc.Prefs = prefs.Memory()
	svc.Logger = s.svc.Logger.With("user", sshSession.User())

	return NewSessionModel(svc, cfg), []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		start := time.Now()
		s.svc.Logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.svc.Logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"duration", time.Since(start).Round(time.Second),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.svc.Logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
		s.svc.Logger.Info("shutting down...")
		return s.Shutdown()
	case err := <-errCh:
		return fmt.Errorf("tui: ssh server: %w", err)
	}
}

// Shutdown gracefully stops the server. The shared stores stay open; they
// belong to the caller.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// Session stages
type sessionStage int

const (
	stageMenu sessionStage = iota
	stageSetup
	stageScoreboard
	stageGame
)

// SessionModel manages the full session flow: menu -> selector -> game -> menu.
// Every game started here is a fresh instance owned by the session.
type SessionModel struct {
	svc        Services
	config     core.RuntimeConfig
	stage      sessionStage
	menu       MenuModel
	setup      SetupModel
	scoreboard ScoreboardModel
	game       *Model
	quitting   bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(svc Services, cfg core.RuntimeConfig) SessionModel {
	m := SessionModel{
		svc:    svc,
		config: cfg,
	}
	m.toMenu()
	return m
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return nil
}

func (m *SessionModel) toMenu() {
	m.menu = NewMenuModel(m.config, m.svc.loadPrefs().Game)
	m.menu.embedded = true
	m.stage = stageMenu
	m.game = nil
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.stage {
	case stageSetup:
		return m.updateSetup(msg)
	case stageScoreboard:
		return m.updateScoreboard(msg)
	case stageGame:
		return m.updateGame(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	m.menu = newMenu.(MenuModel)

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.menu.WantsScoreboard():
		m.scoreboard = NewScoreboardModel(m.svc, m.config.ScreenW, m.config.ScreenH)
		m.scoreboard.embedded = true
		m.stage = stageScoreboard
	case m.menu.Selected() != nil:
		m.setup = NewSetupModel(m.menu.Selected().GameID, m.svc, m.config.ScreenW, m.config.ScreenH)
		m.setup.embedded = true
		m.stage = stageSetup
	}

	return m, cmd
}

func (m SessionModel) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	newBoard, cmd := m.scoreboard.Update(msg)
	m.scoreboard = newBoard.(ScoreboardModel)

	switch {
	case m.scoreboard.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.scoreboard.IsGoingBack():
		m.toMenu()
		return m, nil
	}
	return m, cmd
}

func (m SessionModel) updateSetup(msg tea.Msg) (tea.Model, tea.Cmd) {
	newSetup, cmd := m.setup.Update(msg)
	m.setup = newSetup.(SetupModel)

	if !m.setup.quitting && !m.setup.back && !m.setup.chosen {
		return m, cmd
	}

	res := m.setup.result(m.svc)
	switch {
	case res.Quit:
		m.quitting = true
		return m, tea.Quit
	case res.Back:
		m.toMenu()
		return m, nil
	}

	game, err := StartGame(m.setup.gameID, res.Setup)
	if err != nil {
		m.svc.logger().Error("cannot create game", "err", err)
		m.toMenu()
		return m, nil
	}

	gm := NewModel(game, m.svc, m.config)
	gm.embedded = true
	m.game = &gm
	m.stage = stageGame
	return m, m.game.Init()
}

func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	if exit, ok := msg.(gameExitMsg); ok {
		if !exit.back {
			m.quitting = true
			return m, tea.Quit
		}
		m.toMenu()
		return m, nil
	}

	newModel, cmd := m.game.Update(msg)
	gm := newModel.(Model)
	m.game = &gm
	return m, cmd
}

// View renders the current stage.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.stage {
	case stageSetup:
		return m.setup.View()
	case stageScoreboard:
		return m.scoreboard.View()
	case stageGame:
		return m.game.View()
	default:
		return m.menu.View()
	}
}
