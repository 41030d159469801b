package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/menuboard/internal/live"
)

const liveHeartbeatInterval = 15 * time.Second

// StreamLiveEvents pushes change notifications for a topic over SSE.
// Connected boards re-read the affected collection when an event arrives.
func (s *Server) StreamLiveEvents(c *gin.Context) {
	topic := c.Param("topic")
	if !live.ValidTopic(topic) {
		AbortWithError(c, newValidationError("topic", "invalid_topic", "unknown topic"))
		return
	}
	if s.hub == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	sub, backlog, err := s.hub.Subscribe(topic)
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	defer sub.Close()

	if s.metrics != nil {
		s.metrics.LiveClientConnected(topic)
		defer s.metrics.LiveClientDisconnected(topic)
	}

	writer := c.Writer
	header := writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	writer.WriteHeader(http.StatusOK)

	flusher, _ := writer.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}

	if _, err := io.WriteString(writer, "retry: 2000\n\n"); err != nil {
		return
	}
	for _, event := range backlog {
		if err := writeEvent(writer, event); err != nil {
			return
		}
	}
	flush()

	heartbeat := time.NewTicker(liveHeartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := writeEvent(writer, event); err != nil {
				return
			}
			flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flush()
		}
	}
}

func writeEvent(w io.Writer, event live.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, "data: "); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n\n")
	return err
}
