// apps/go-server/internal/httpserver/routes_rooms.go
//
// HTTP routes for live rooms:
//   - POST /rooms      → create a room and start its loop
//   - GET  /rooms      → list rooms with phase and seated players
//   - GET  /rooms/{id} → one room summary
//
// The realtime side of a room is served by ws.go.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/docombos/docombos/apps/go-server/internal/session"
	"github.com/docombos/docombos/apps/go-server/internal/store"
)

// mountRooms registers all /rooms routes.
func (s *Server) mountRooms(r chi.Router) {
	r.Route("/rooms", func(r chi.Router) {
		r.Post("/", s.handleCreateRoom)
		r.Get("/", s.handleListRooms)
		r.Get("/{id}", s.handleGetRoom)
	})
}

type createRoomRes struct {
	RoomID string `json:"roomId"`
}

// handleCreateRoom registers a fresh room and starts its loop on the server
// context. The room removes itself from the store once its last player leaves.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	sess := s.newRoom()
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save room")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	go sess.Run(s.baseCtx)

	by := "guest"
	if me := currentUser(r); me != nil {
		by = me.Username
	}
	log.Info().Str("room", sess.ID()).Str("by", by).Msg("room created")

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(createRoomRes{RoomID: sess.ID()})
}

func (s *Server) newRoom() *session.Session {
	opts := []session.Option{
		session.WithRecorder(s.results),
		session.WithOnClose(func(id string) {
			_ = s.store.Delete(context.Background(), id)
		}),
	}
	if s.cfg.RoomIdleTimeout > 0 {
		opts = append(opts, session.WithIdleTimeout(s.cfg.RoomIdleTimeout))
	}
	if s.cfg.Publisher != nil {
		opts = append(opts, session.WithPublisher(s.cfg.Publisher))
	}
	return session.New(uuid.NewString(), s.cfg.Rules, opts...)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.store.List(r.Context())
	if err != nil {
		http.Error(w, `{"error":"list_failed"}`, http.StatusInternalServerError)
		return
	}
	out := make([]session.Info, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Info())
	}
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"lookup_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(sess.Info())
}
