// Package realtime keeps the live side of chat: which connected sessions sit in
// which conversation room, and best-effort fan-out to them.
//
// All state lives in the Dispatcher created at process start and discarded by
// Close at shutdown. Nothing is persisted, and two processes do not see each
// other's sessions; running more than one instance needs an external fan-out
// bus in front of Relay. Clients that miss a relay recover through message
// history on reconnect.
package realtime

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pushp314/agencydesk-backend/pkg/logger"
)

// Session is a live client connection. socketio.Conn satisfies it.
type Session interface {
	ID() string
	Emit(event string, v ...interface{})
}

type member struct {
	session Session
	actorID uint
	rooms   map[string]struct{}
}

type Dispatcher struct {
	mu       sync.RWMutex
	sessions map[string]*member            // session id -> member
	rooms    map[string]map[string]Session // room key -> session id -> session
	online   map[uint]int                  // actor id -> live session count
	closed   bool
}

func New() *Dispatcher {
	return &Dispatcher{
		sessions: make(map[string]*member),
		rooms:    make(map[string]map[string]Session),
		online:   make(map[uint]int),
	}
}

// Attach registers a freshly authenticated session for actorID. It reports
// whether this is the actor's first live session.
func (d *Dispatcher) Attach(s Session, actorID uint) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false, fmt.Errorf("dispatcher is closed")
	}
	if _, ok := d.sessions[s.ID()]; ok {
		return false, nil
	}

	d.sessions[s.ID()] = &member{session: s, actorID: actorID, rooms: make(map[string]struct{})}
	d.online[actorID]++
	return d.online[actorID] == 1, nil
}

// Join adds an attached session to room. Joining a room twice is a no-op and
// returns false.
func (d *Dispatcher) Join(sessionID, room string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.sessions[sessionID]
	if !ok {
		return false, fmt.Errorf("session %s is not attached", sessionID)
	}
	if _, joined := m.rooms[room]; joined {
		return false, nil
	}

	m.rooms[room] = struct{}{}
	members, ok := d.rooms[room]
	if !ok {
		members = make(map[string]Session)
		d.rooms[room] = members
	}
	members[sessionID] = m.session
	return true, nil
}

func (d *Dispatcher) Leave(sessionID, room string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if m, ok := d.sessions[sessionID]; ok {
		delete(m.rooms, room)
	}
	d.removeFromRoom(sessionID, room)
}

// Drop forgets a disconnected session and its room memberships. It returns the
// session's actor and whether that was the actor's last live session.
func (d *Dispatcher) Drop(sessionID string) (uint, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.sessions[sessionID]
	if !ok {
		return 0, false
	}
	for room := range m.rooms {
		d.removeFromRoom(sessionID, room)
	}
	delete(d.sessions, sessionID)

	d.online[m.actorID]--
	if d.online[m.actorID] <= 0 {
		delete(d.online, m.actorID)
		return m.actorID, true
	}
	return m.actorID, false
}

func (d *Dispatcher) removeFromRoom(sessionID, room string) {
	members, ok := d.rooms[room]
	if !ok {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(d.rooms, room)
	}
}

// Relay emits event to every session currently in room, the sender's own
// sessions included, and returns how many sessions it reached.
func (d *Dispatcher) Relay(room, event string, payload interface{}) int {
	d.mu.RLock()
	targets := make([]Session, 0, len(d.rooms[room]))
	for _, s := range d.rooms[room] {
		targets = append(targets, s)
	}
	d.mu.RUnlock()

	return d.emitAll(targets, event, payload)
}

// Broadcast emits event to every attached session.
func (d *Dispatcher) Broadcast(event string, payload interface{}) int {
	d.mu.RLock()
	targets := make([]Session, 0, len(d.sessions))
	for _, m := range d.sessions {
		targets = append(targets, m.session)
	}
	d.mu.RUnlock()

	return d.emitAll(targets, event, payload)
}

// emitAll runs outside the lock so a slow or broken session never blocks
// membership changes.
func (d *Dispatcher) emitAll(targets []Session, event string, payload interface{}) int {
	delivered := 0
	for _, s := range targets {
		if emit(s, event, payload) {
			delivered++
		}
	}
	return delivered
}

func emit(s Session, event string, payload interface{}) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().
				Str("session", s.ID()).
				Str("event", event).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Dropped relay to broken session")
			ok = false
		}
	}()
	s.Emit(event, payload)
	return true
}

// Members returns the number of sessions in room.
func (d *Dispatcher) Members(room string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms[room])
}

// Rooms returns the rooms a session has joined, sorted.
func (d *Dispatcher) Rooms(sessionID string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	m, ok := d.sessions[sessionID]
	if !ok {
		return nil
	}
	rooms := make([]string, 0, len(m.rooms))
	for r := range m.rooms {
		rooms = append(rooms, r)
	}
	sort.Strings(rooms)
	return rooms
}

// Online returns the ids of actors with at least one live session, sorted.
func (d *Dispatcher) Online() []uint {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]uint, 0, len(d.online))
	for id := range d.online {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (d *Dispatcher) IsOnline(actorID uint) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.online[actorID] > 0
}

// Close drops every session and refuses new ones. Connections themselves are
// closed by the transport.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.sessions = make(map[string]*member)
	d.rooms = make(map[string]map[string]Session)
	d.online = make(map[uint]int)
}
