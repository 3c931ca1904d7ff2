package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
)

const (
	// sessionHeader carries the streamable HTTP session id.
	sessionHeader = "Mcp-Session-Id"

	maxRequestBody = 4 << 20
)

// sessionLocks serializes tool calls per HTTP session in arrival order while
// letting different sessions run concurrently. Entries are removed once no
// call holds or waits on them.
type sessionLocks struct {
	mu     sync.Mutex
	queues map[string]*sessionQueue
}

type sessionQueue struct {
	// tail is closed when the most recent caller releases the session.
	tail chan struct{}
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{queues: make(map[string]*sessionQueue)}
}

// lock blocks until every earlier caller for id has released it. If ctx
// ends first the caller gives up its place: the callers behind it wait
// only for the ones ahead of it.
func (l *sessionLocks) lock(ctx context.Context, id string) (unlock func(), err error) {
	done := make(chan struct{})

	l.mu.Lock()
	q, ok := l.queues[id]
	if !ok {
		q = &sessionQueue{}
		l.queues[id] = q
	}
	prev := q.tail
	q.tail = done
	q.refs++
	l.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			close(done)
			l.mu.Lock()
			q.refs--
			if q.refs == 0 {
				delete(l.queues, id)
			}
			l.mu.Unlock()
		})
	}

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			go func() {
				<-prev
				release()
			}()
			return nil, ctx.Err()
		}
	}
	return release, nil
}

// pending reports how many callers hold or wait on id.
func (l *sessionLocks) pending(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if q, ok := l.queues[id]; ok {
		return q.refs
	}
	return 0
}

// size reports how many sessions currently have callers.
func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queues)
}

// orderCalls runs the tools/call POSTs of one HTTP session one at a time,
// in the order they reach the server. Other requests pass straight through.
func (s *Server) orderCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(sessionHeader)
		if r.Method != http.MethodPost || id == "" {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
		r.Body.Close()
		if err != nil {
			http.Error(w, "reading request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if !isToolCall(body) {
			next.ServeHTTP(w, r)
			return
		}

		unlock, err := s.sessions.lock(r.Context(), id)
		if err != nil {
			// The client went away while queued.
			return
		}
		defer unlock()
		next.ServeHTTP(w, r)
	})
}

func isToolCall(body []byte) bool {
	var msg struct {
		Method string `json:"method"`
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		return false
	}
	return msg.Method == methodCallTool
}
