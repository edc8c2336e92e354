package sse

import (
	"net/http"
	"time"

	"github.com/meetscribe/meetscribe/internal/logger"
)

const keepAliveInterval = 30 * time.Second

// ServeSSE handles an SSE connection for a specific client, streaming hub
// events until the client disconnects.
func ServeSSE(hub *Hub, log *logger.Logger, w http.ResponseWriter, r *http.Request, clientID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// SSE connections are long-lived; the server's write timeout must not
	// terminate them.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Warn("Could not disable write deadline", map[string]interface{}{
			"client_id": clientID,
			"error":     err.Error(),
		})
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := NewClient(clientID)
	hub.Register(client)
	defer hub.Unregister(client)

	if frame, err := Format(EventTypeConnected, map[string]string{"client_id": clientID}); err == nil {
		_, _ = w.Write(frame)
		flusher.Flush()
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case data, open := <-client.Events():
			if !open {
				return
			}
			if _, err := w.Write(data); err != nil {
				return
			}
			flusher.Flush()

		case <-keepAlive.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
