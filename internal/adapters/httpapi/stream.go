package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamMembers upgrades to a WebSocket and pushes the current snapshot
// followed by every newer one. A slow client skips intermediate snapshots.
// Client messages are read and discarded; they only serve to detect close.
func (s *Server) StreamMembers(w http.ResponseWriter, r *http.Request) {
	log := loggerFrom(r).With().Str("module", "stream").Logger()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade")
		return
	}
	defer conn.Close()

	sub := s.Feed.Subscribe()
	defer s.Feed.Unsubscribe(sub)
	log = log.With().Stringer("subscription", sub.ID).Logger()
	log.Info().Msg("stream opened")
	defer log.Info().Msg("stream closed")

	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-sub.C:
			if !ok {
				return
			}
			data, err := json.Marshal(snapshotFromFeed(snap))
			if err != nil {
				log.Error().Err(err).Msg("encode snapshot")
				continue
			}
			if err := conn.SetWriteDeadline(time.Now().Add(s.StreamWriteTimeout)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Uint64("version", snap.Version).Msg("stream write")
				return
			}
		case <-clientGone:
			return
		case <-s.closing():
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}
	}
}

// CloseStreams ends every open stream. Hijacked connections are not tracked
// by http.Server.Shutdown, so serve registers this with RegisterOnShutdown.
func (s *Server) CloseStreams() {
	s.closeOnce.Do(func() { close(s.closed) })
}

func (s *Server) closing() <-chan struct{} {
	return s.closed
}
