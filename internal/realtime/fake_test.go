package realtime

import "sync"

type emitted struct {
	Event   string
	Payload interface{}
}

type fakeSession struct {
	id string

	mu     sync.Mutex
	events []emitted
	panics bool
}

func newFakeSession(id string) *fakeSession {
	return &fakeSession{id: id}
}

func (f *fakeSession) ID() string { return f.id }

func (f *fakeSession) Emit(event string, v ...interface{}) {
	if f.panics {
		panic("connection reset")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var payload interface{}
	if len(v) > 0 {
		payload = v[0]
	}
	f.events = append(f.events, emitted{Event: event, Payload: payload})
}

func (f *fakeSession) received(event string) []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []interface{}
	for _, e := range f.events {
		if e.Event == event {
			out = append(out, e.Payload)
		}
	}
	return out
}
