package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/MrWong99/scenedeck/internal/observe"
	"github.com/MrWong99/scenedeck/pkg/scene"
)

const (
	// feedBuffer is the per-subscriber event buffer. A tab that falls this
	// far behind misses events until it catches up.
	feedBuffer = 32

	writeTimeout = 5 * time.Second
)

// feedMessage is one message on the websocket feed. The first message after
// connecting is a snapshot of the whole collection.
type feedMessage struct {
	Kind    string         `json:"kind"`
	Records []scene.Record `json:"records,omitempty"`
	Size    int            `json:"size"`
}

const kindSnapshot = "snapshot"

// handleWS streams collection changes to the client until either side goes
// away. The feed is write-only; client messages are discarded.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		// Accept has already written the error response.
		return
	}
	defer conn.CloseNow()

	log := observe.Logger(r.Context(), s.logger)

	// Subscribe before the snapshot so no change slips between the two.
	events, cancel := s.backend.Subscribe(feedBuffer)
	defer cancel()

	ctx := conn.CloseRead(r.Context())

	recs := s.backend.Scenes()
	if err := writeFeed(ctx, conn, feedMessage{Kind: kindSnapshot, Records: recs, Size: len(recs)}); err != nil {
		log.Debug("websocket snapshot failed", "err", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "shutting down")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			msg := feedMessage{Kind: string(ev.Kind), Records: ev.Records, Size: ev.Size}
			if err := writeFeed(ctx, conn, msg); err != nil {
				if !errors.Is(err, context.Canceled) {
					log.Debug("websocket write failed", "err", err)
				}
				return
			}
		}
	}
}

func writeFeed(ctx context.Context, conn *websocket.Conn, msg feedMessage) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
