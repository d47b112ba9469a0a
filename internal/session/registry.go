package session

import (
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/shellmux/shellmux/internal/logging"
	"github.com/shellmux/shellmux/internal/shared/id"
	"github.com/shellmux/shellmux/internal/shared/paths"
)

// Config tunes session lifecycle behavior. Zero values fall back to the
// defaults below.
type Config struct {
	// ShellPath overrides the shell binary; empty means $SHELL then /bin/sh.
	ShellPath string
	// CommandWait bounds how long Execute waits inline before handing the
	// command off as pending.
	CommandWait time.Duration
	// ConfirmWait bounds how long a read confirmation stays open.
	ConfirmWait time.Duration
	// CloseGrace is the SIGTERM-to-SIGKILL escalation window on close.
	CloseGrace time.Duration
	// MaxSessions caps concurrently live sessions.
	MaxSessions int
	// BufferMax caps retained output chunks per session.
	BufferMax int
	// IdleExpiry is how long a session may sit without activity before the
	// janitor closes it. Closed sessions are pruned after the same window.
	IdleExpiry time.Duration
	// SweepEvery is the janitor interval.
	SweepEvery time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		CommandWait: 3 * time.Second,
		ConfirmWait: 30 * time.Second,
		CloseGrace:  5 * time.Second,
		MaxSessions: 5,
		BufferMax:   4096,
		IdleExpiry:  5 * time.Minute,
		SweepEvery:  30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CommandWait <= 0 {
		c.CommandWait = d.CommandWait
	}
	if c.ConfirmWait <= 0 {
		c.ConfirmWait = d.ConfirmWait
	}
	if c.CloseGrace <= 0 {
		c.CloseGrace = d.CloseGrace
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = d.MaxSessions
	}
	if c.BufferMax <= 0 {
		c.BufferMax = d.BufferMax
	}
	if c.IdleExpiry <= 0 {
		c.IdleExpiry = d.IdleExpiry
	}
	if c.SweepEvery <= 0 {
		c.SweepEvery = d.SweepEvery
	}
	return c
}

// Registry owns every session and is the sole entry point for operations
// on them. Lock order is registry before session; session locks are never
// held while taking the registry lock, and bridge events are emitted with
// no locks held.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg    Config
	log    *logging.Logger
	bridge *Bridge

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRegistry builds a registry and starts its idle-sweep janitor.
func NewRegistry(cfg Config, log *logging.Logger) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		cfg:      cfg.withDefaults(),
		log:      log,
		bridge:   NewBridge(),
		stop:     make(chan struct{}),
	}
	go r.janitor()
	return r
}

// Bridge exposes the event fan-out for presentation surfaces to attach to.
func (r *Registry) Bridge() *Bridge { return r.bridge }

// Create spawns a shell in workingDir and registers the session. The
// directory must be absolute and exist; live sessions are capped at
// MaxSessions.
func (r *Registry) Create(workingDir string) (View, error) {
	if err := paths.ValidateAbsolute(workingDir); err != nil {
		return View{}, err
	}

	r.mu.Lock()
	if r.liveCountLocked() >= r.cfg.MaxSessions {
		r.mu.Unlock()
		return View{}, ErrSessionLimit
	}

	proc, err := Spawn(r.cfg.ShellPath, workingDir)
	if err != nil {
		r.mu.Unlock()
		return View{}, err
	}

	now := time.Now()
	s := &Session{
		ID:           id.NewSessionID().String(),
		WorkingDir:   workingDir,
		CreatedAt:    now,
		state:        StateCreated,
		lastActivity: now,
		proc:         proc,
		buf:          NewBuffer(r.cfg.BufferMax),
		lastWriter:   OriginAutomated,
		closed:       make(chan struct{}),
	}
	r.sessions[s.ID] = s
	r.mu.Unlock()

	go r.drainLoop(s)
	go r.watchExit(s)

	v := s.View()
	r.bridge.sessionCreated(v)
	r.log.Info("session created",
		zap.String("session_id", s.ID),
		zap.String("working_dir", workingDir),
		zap.Int("pid", proc.Pid()))
	return v, nil
}

// Get returns a snapshot of one session.
func (r *Registry) Get(sessionID string) (View, error) {
	s, err := r.get(sessionID)
	if err != nil {
		return View{}, err
	}
	return s.View(), nil
}

// List returns snapshots of every registered session, oldest first.
func (r *Registry) List() []View {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	views := make([]View, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, s.View())
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].SessionID < views[j].SessionID
		}
		return views[i].CreatedAt.Before(views[j].CreatedAt)
	})
	return views
}

// Output returns a copy of a session's retained output. It never moves
// the read cursor.
func (r *Registry) Output(sessionID string) ([]Chunk, error) {
	s, err := r.get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Output(), nil
}

// Close terminates the session's process and marks it closed. Closing an
// already-closed session is a no-op; an unknown id is ErrNotFound. A
// process that survives the kill escalation is logged as orphaned but the
// session is considered closed regardless.
func (r *Registry) Close(sessionID string) error {
	s, err := r.get(sessionID)
	if err != nil {
		return err
	}
	r.closeSession(s, "requested")
	return nil
}

func (r *Registry) closeSession(s *Session, reason string) {
	s.mu.Lock()
	if s.state == StateClosed || s.state == StateClosing {
		s.mu.Unlock()
		return
	}
	s.state = StateClosing
	pid := s.proc.Pid()
	s.mu.Unlock()

	// Wake Execute and RequestRead waiters before the kill escalation so
	// they observe closure immediately rather than after the grace window.
	s.signalClosed()

	err := s.proc.Terminate(r.cfg.CloseGrace)

	s.mu.Lock()
	s.state = StateClosed
	s.lastActivity = time.Now()
	s.pending = nil
	s.mu.Unlock()

	if err != nil {
		r.log.Warn("shell process may be orphaned",
			zap.String("session_id", s.ID),
			zap.Int("pid", pid),
			zap.Error(err))
	}
	r.bridge.sessionClosed(s.ID)
	r.log.Info("session closed",
		zap.String("session_id", s.ID),
		zap.String("reason", reason))
}

// SubmitOperatorCommand forwards a line typed by the human operator
// straight to the shell, bypassing risk classification and the inline
// wait. Output it produces is attributed to the operator.
func (r *Registry) SubmitOperatorCommand(sessionID, text string) error {
	s, err := r.get(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == StateClosed || s.state == StateClosing {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.lastWriter = OriginOperator
	s.lastCommand = text
	s.commandCount++
	s.lastActivity = time.Now()
	werr := s.proc.WriteLine(text)
	s.mu.Unlock()

	if werr != nil {
		if we, ok := werr.(*WriteError); ok {
			we.SessionID = sessionID
		}
		return werr
	}
	r.log.Debug("operator command forwarded",
		zap.String("session_id", sessionID))
	return nil
}

// Shutdown stops the janitor and closes every live session. Safe to call
// more than once.
func (r *Registry) Shutdown() {
	r.stopOnce.Do(func() { close(r.stop) })

	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		r.closeSession(s, "shutdown")
	}
}

func (r *Registry) get(sessionID string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *Registry) liveCountLocked() int {
	n := 0
	for _, s := range r.sessions {
		if s.State() != StateClosed {
			n++
		}
	}
	return n
}

// splitTail holds back the last markerLen-1 bytes of text so a sentinel
// split across reads is still found, backing up further to a rune boundary
// so every emitted chunk stays valid UTF-8. The sentinel is ASCII, so the
// extra hold-back can never hide a match.
func splitTail(text string, markerLen int) (string, string) {
	keep := len(text) - (markerLen - 1)
	for keep > 0 && !utf8.RuneStart(text[keep]) {
		keep--
	}
	if keep <= 0 {
		return "", text
	}
	return text[:keep], text[keep:]
}

// drainLoop pumps PTY output into the session buffer. Each raw chunk is
// decoded, scanned for the completion sentinel of the outstanding command,
// and appended under attribution of whoever wrote last. A tail is held
// back across reads via splitTail so a sentinel split between chunks is
// still found.
func (r *Registry) drainLoop(s *Session) {
	raw := make([]byte, 4096)
	var tail string

	for {
		n, err := s.proc.Drain(raw)
		if n > 0 {
			text := tail + DecodeChunk(raw[:n])
			tail = ""

			s.mu.Lock()
			marker := s.marker
			origin := s.lastWriter

			completed := false
			if marker != "" {
				if idx := strings.Index(text, marker); idx >= 0 {
					completed = true
					text = text[:idx] + text[idx+len(marker):]
					s.marker = ""
				} else {
					text, tail = splitTail(text, len(marker))
				}
			}

			var chunk Chunk
			if text != "" {
				chunk = s.buf.Append(origin, text)
				s.lastActivity = time.Now()
			}
			var markerCh chan struct{}
			if completed {
				markerCh = s.markerCh
				s.markerCh = nil
			}
			s.mu.Unlock()

			if text != "" {
				r.bridge.outputAppended(s.ID, chunk)
			}
			if markerCh != nil {
				close(markerCh)
			}
		}
		if err != nil {
			// PTY read fails once the process side closes; flush any
			// held-back tail and stop.
			if tail != "" {
				s.mu.Lock()
				chunk := s.buf.Append(s.lastWriter, tail)
				s.mu.Unlock()
				r.bridge.outputAppended(s.ID, chunk)
			}
			return
		}
	}
}

// watchExit marks the session closed when the shell process exits on its
// own, e.g. via an exit builtin or an external kill.
func (r *Registry) watchExit(s *Session) {
	select {
	case <-s.proc.Done():
	case <-s.closed:
		return
	}

	s.mu.Lock()
	if s.state == StateClosed || s.state == StateClosing {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	s.lastActivity = time.Now()
	s.pending = nil
	s.mu.Unlock()

	s.signalClosed()
	// Releases the PTY descriptor; the process is already gone.
	_ = s.proc.Terminate(r.cfg.CloseGrace)

	r.bridge.sessionClosed(s.ID)
	r.log.Info("session closed",
		zap.String("session_id", s.ID),
		zap.String("reason", "process exited"))
}

// janitor closes sessions idle past IdleExpiry and prunes closed sessions
// after the same window, so the registry map stays bounded while recently
// closed ids keep answering Close idempotently.
func (r *Registry) janitor() {
	ticker := time.NewTicker(r.cfg.SweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
		}

		cutoff := time.Now().Add(-r.cfg.IdleExpiry)

		r.mu.Lock()
		var expired, pruned []*Session
		for sid, s := range r.sessions {
			s.mu.Lock()
			state, last := s.state, s.lastActivity
			s.mu.Unlock()
			if !last.Before(cutoff) {
				continue
			}
			if state == StateClosed {
				delete(r.sessions, sid)
				pruned = append(pruned, s)
			} else if state == StateIdle || state == StateCreated {
				expired = append(expired, s)
			}
		}
		r.mu.Unlock()

		for _, s := range expired {
			r.log.Info("session expired",
				zap.String("session_id", s.ID),
				zap.Duration("idle_expiry", r.cfg.IdleExpiry))
			r.closeSession(s, "idle expiry")
		}
		for _, s := range pruned {
			r.log.Debug("closed session pruned",
				zap.String("session_id", s.ID))
		}
	}
}
