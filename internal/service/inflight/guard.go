package inflight

import (
	"sync"
	"time"
)

// Guard tracks messages that are currently being handled so a duplicate
// delivery of the same message is dropped while the first one is running.
type Guard struct {
	requests map[string]*activeRequest
	mu       sync.Mutex
}

type activeRequest struct {
	messageID string
	command   string
	startedAt time.Time
}

type ActiveRequestInfo struct {
	MessageID string
	Command   string
	StartedAt time.Time
}

func NewGuard() *Guard {
	return &Guard{
		requests: make(map[string]*activeRequest),
	}
}

// TryAcquire marks messageID as in flight. It returns false when the id is
// already held. The returned release func is safe to call more than once.
func (g *Guard) TryAcquire(messageID string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.requests[messageID]; exists {
		return func() {}, false
	}

	req := &activeRequest{
		messageID: messageID,
		startedAt: time.Now(),
	}
	g.requests[messageID] = req

	var once sync.Once
	return func() {
		once.Do(func() { g.release(messageID, req) })
	}, true
}

func (g *Guard) release(messageID string, req *activeRequest) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.requests[messageID] == req {
		delete(g.requests, messageID)
	}
}

func (g *Guard) IsActive(messageID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, exists := g.requests[messageID]
	return exists
}

func (g *Guard) SetCommand(messageID, command string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if req, exists := g.requests[messageID]; exists {
		req.command = command
	}
}

func (g *Guard) GetActiveRequest(messageID string) *ActiveRequestInfo {
	g.mu.Lock()
	defer g.mu.Unlock()

	req, exists := g.requests[messageID]
	if !exists {
		return nil
	}

	return &ActiveRequestInfo{
		MessageID: req.messageID,
		Command:   req.command,
		StartedAt: req.startedAt,
	}
}

func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}
