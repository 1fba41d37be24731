// Package server provides the HTTP surface for spectators: health, session
// history, leaderboard, a live MJPEG view of the game and a WebSocket
// state feed.
package server

import (
	"fmt"
	"net/http"
	"time"
)

// DefaultStreamInterval caps the MJPEG stream at about 15 FPS.
const DefaultStreamInterval = 66 * time.Millisecond

// StreamHandler serves the rendered game frames as MJPEG.
type StreamHandler struct {
	feed     *Feed
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler over feed.
func NewStreamHandler(feed *Feed, interval time.Duration) *StreamHandler {
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	return &StreamHandler{feed: feed, interval: interval}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	wake, cancel := h.feed.Subscribe()
	defer cancel()

	var sent uint64
	for {
		frame, seq := h.feed.Frame()
		if seq != sent && len(frame) > 0 {
			if err := writePart(w, frame); err != nil {
				return
			}
			sent = seq
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}

			select {
			case <-r.Context().Done():
				return
			case <-time.After(h.interval):
			}
			continue
		}

		select {
		case <-r.Context().Done():
			return
		case <-wake:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\r\n")
	return err
}
