// Package session owns the live diagrams of connected machines and applies
// the debug commands to them: a set-machine command replaces a session's
// diagram wholesale, a state-changed command mutates the highlight of the
// affected nodes in place.
package session

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/frantoso/jasm-debugger/diagram"
	"github.com/frantoso/jasm-debugger/model"
	"github.com/frantoso/jasm-debugger/svg"
)

// Key identifies one session: a transport connection id paired with the
// machine name it reported.
type Key struct {
	ConnectionID string
	MachineName  string
}

// Session holds the current diagram of one machine instance. Commands for
// the same key are applied strictly one at a time.
type Session struct {
	mu      sync.Mutex
	key     Key
	diagram *diagram.Diagram
}

// Key returns the session's identity.
func (s *Session) Key() Key { return s.key }

// WriteDocument serializes the session's current vector document.
func (s *Session) WriteDocument(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.diagram == nil {
		return fmt.Errorf("session %s/%s: no machine set", s.key.ConnectionID, s.key.MachineName)
	}
	return svg.WriteDocument(w, s.diagram.TotalWidth(), s.diagram.TotalHeight(), s.diagram.Render())
}

// Manager routes decoded commands to sessions. Sessions for different keys
// are fully independent and may be driven concurrently.
type Manager struct {
	mu       sync.RWMutex
	sessions map[Key]*Session
	log      *slog.Logger
}

// NewManager creates an empty session manager.
func NewManager(log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		sessions: make(map[Key]*Session),
		log:      log,
	}
}

// SetMachine applies a set-machine payload for a connection: it parses and
// lays out the description and installs the new diagram, replacing any prior
// one under the same key. On failure the previous diagram stays in place.
func (m *Manager) SetMachine(connectionID string, payload []byte) (*Session, error) {
	fsm, err := model.ParseMachine(payload)
	if err != nil {
		return nil, err
	}

	d, err := diagram.New(fsm)
	if err != nil {
		return nil, err
	}

	key := Key{ConnectionID: connectionID, MachineName: fsm.Name}
	session := m.session(key, true)

	session.mu.Lock()
	session.diagram = d
	session.mu.Unlock()

	m.log.Info("machine set",
		"connection", connectionID,
		"machine", fsm.Name,
		"states", len(d.Nodes()))
	return session, nil
}

// StateChanged applies a state-changed payload for a connection. Without a
// matching session the notice is a no-op. A change leaving a state whose
// name starts with "initial" resets the whole owning diagram; otherwise only
// the matching node is reset. Misses on either side are tolerated.
func (m *Manager) StateChanged(connectionID string, payload []byte) (*Session, error) {
	info, err := model.ParseStateChange(payload)
	if err != nil {
		return nil, err
	}

	key := Key{ConnectionID: connectionID, MachineName: info.MachineName}
	session := m.session(key, false)
	if session == nil {
		m.log.Debug("state change for unknown session",
			"connection", connectionID,
			"machine", info.MachineName)
		return nil, nil
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.diagram == nil {
		return session, nil
	}

	applyStateChange(session.diagram, info)

	m.log.Debug("state changed",
		"connection", connectionID,
		"machine", info.MachineName,
		"from", info.OldStateID,
		"to", info.NewStateID)
	return session, nil
}

// applyStateChange clears the old state and highlights the new one.
func applyStateChange(d *diagram.Diagram, info *model.StateChangedInfo) {
	if owner, old := d.FindNode(info.OldStateID); old != nil {
		if strings.HasPrefix(strings.ToLower(info.OldStateName), "initial") {
			// A transition out of the initial pseudo-state resets the
			// whole chart, not a single node.
			owner.ResetAll()
		} else {
			old.Reset()
		}
	}
	if _, active := d.FindNode(info.NewStateID); active != nil {
		active.Highlight()
	}
}

// Session returns the session for a key, or nil if none exists.
func (m *Manager) Session(key Key) *Session {
	return m.session(key, false)
}

// Sessions lists the live session keys.
func (m *Manager) Sessions() []Key {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]Key, 0, len(m.sessions))
	for key := range m.sessions {
		keys = append(keys, key)
	}
	return keys
}

// DropConnection removes every session belonging to a connection.
func (m *Manager) DropConnection(connectionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.sessions {
		if key.ConnectionID == connectionID {
			delete(m.sessions, key)
		}
	}
}

func (m *Manager) session(key Key, create bool) *Session {
	m.mu.RLock()
	session := m.sessions[key]
	m.mu.RUnlock()
	if session != nil || !create {
		return session
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if session = m.sessions[key]; session == nil {
		session = &Session{key: key}
		m.sessions[key] = session
	}
	return session
}
