package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
)

// stream relays events as server-sent events with a keep-alive comment
// every ping interval. It returns when the stream ends or the client is gone.
func (s *Server) stream(w http.ResponseWriter, r *http.Request, events <-chan model.Event) {
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		s.logger.Warn("response does not support streaming", zap.Error(err))
	}

	ping := time.NewTicker(s.cfg.PingInterval)
	defer ping.Stop()

	for {
		var err error
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			err = writeEvent(w, ev)
		case <-ping.C:
			_, err = io.WriteString(w, ": ping\n\n")
		case <-r.Context().Done():
			return
		}
		if err == nil {
			err = rc.Flush()
		}
		if err != nil {
			s.logger.Debug("client stream closed", zap.Error(err))
			return
		}
	}
}

// writeEvent writes one event frame. Multi-line data gets one data field per line.
func writeEvent(w io.Writer, ev model.Event) error {
	var b strings.Builder
	fmt.Fprintf(&b, "event: %s\n", ev.Type)
	for _, line := range strings.Split(ev.Data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
