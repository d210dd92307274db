package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/hacktrack/api/internal/model"
)

const (
	sendBuffer   = 64
	pingInterval = 30 * time.Second
)

// subscriber is one WebSocket connection watching a job. The send channel
// is never closed; a dropped subscriber is signalled through done so that
// late sends from the reader cannot hit a closed channel.
type subscriber struct {
	jobID string
	send  chan []byte
	done  chan struct{}
	once  sync.Once
}

func (s *subscriber) drop() {
	s.once.Do(func() { close(s.done) })
}

// enqueue delivers a message unless the subscriber has been dropped.
func (s *subscriber) enqueue(data []byte) bool {
	select {
	case s.send <- data:
		return true
	case <-s.done:
		return false
	}
}

// Hub fans job updates out to every connection subscribed to that job.
// Publishing never blocks: a subscriber that cannot keep up is dropped.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

func (h *Hub) subscribe(jobID string) *subscriber {
	s := &subscriber{
		jobID: jobID,
		send:  make(chan []byte, sendBuffer),
		done:  make(chan struct{}),
	}
	h.mu.Lock()
	if h.subs[jobID] == nil {
		h.subs[jobID] = make(map[*subscriber]struct{})
	}
	h.subs[jobID][s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[s.jobID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.jobID)
		}
	}
	h.mu.Unlock()
	s.drop()
}

func (h *Hub) publish(jobID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Hub] marshal failed: %v", err)
		return
	}

	h.mu.Lock()
	for s := range h.subs[jobID] {
		select {
		case s.send <- data:
		default:
			delete(h.subs[jobID], s)
			s.drop()
		}
	}
	h.mu.Unlock()
}

// BroadcastProgress notifies subscribers of a job's progress step.
func (h *Hub) BroadcastProgress(jobID string, progress int, status model.JobStatus, step string) {
	h.publish(jobID, model.WSProgressMessage{
		Type:        model.WSMessageTypeProgress,
		JobID:       jobID,
		Progress:    progress,
		Status:      status,
		CurrentStep: step,
	})
}

// BroadcastComplete delivers the finished job result.
func (h *Hub) BroadcastComplete(jobID string, result interface{}) {
	h.publish(jobID, model.WSCompleteMessage{
		Type:   model.WSMessageTypeComplete,
		JobID:  jobID,
		Result: result,
	})
}

// BroadcastError reports a failed job.
func (h *Hub) BroadcastError(jobID string, code, message string) {
	h.publish(jobID, model.WSErrorMessage{
		Type:  model.WSMessageTypeError,
		JobID: jobID,
		Error: model.WSError{Code: code, Message: message},
	})
}

// HandleConnection runs one subscriber connection until the client leaves.
// The reader loop only services ping/pong; all job traffic is one-way.
func (h *Hub) HandleConnection(c *websocket.Conn, jobID string) {
	s := h.subscribe(jobID)
	defer h.unsubscribe(s)

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case msg := <-s.send:
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-s.done:
				c.WriteMessage(websocket.CloseMessage, []byte{})
				return
			case <-ticker.C:
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Hub] read error (job=%s): %v", jobID, err)
			}
			return
		}

		var msg model.WSMessage
		if json.Unmarshal(raw, &msg) != nil {
			continue
		}
		if msg.Type == model.WSMessageTypePing {
			data, _ := json.Marshal(model.WSMessage{Type: model.WSMessageTypePong})
			if !s.enqueue(data) {
				return
			}
		}
	}
}
