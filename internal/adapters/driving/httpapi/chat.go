package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driving"
)

// chatRequest is the POST /chat/stream body.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// turnResponse is one history entry in session endpoints.
type turnResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// handleChatStream runs the chat pipeline for one message and streams
// progress markers and answer deltas as SSE. Pipeline failures arrive
// in-stream as [ERROR] payloads; HTTP errors only cover bad requests.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}
	if req.SessionID == "" || req.Message == "" {
		writeError(w, fmt.Errorf("%w: session_id and message are required", domain.ErrInvalidInput))
		return
	}

	stream, err := newSSEStream(w)
	if err != nil {
		writeError(w, err)
		return
	}

	failed := false
	handler := driving.StreamHandler{
		OnStage: func(stage domain.Stage, note string) {
			switch stage {
			case domain.StageDone, domain.StageError:
				// Terminal stages are signalled by [DONE] / [ERROR].
			default:
				msg := string(stage)
				if note != "" {
					msg += ": " + note
				}
				stream.Progress(msg)
			}
		},
		OnDelta: func(text string) {
			stream.Send(text)
		},
		OnError: func(err error) {
			failed = true
			stream.Error(err.Error())
		},
	}

	err = s.ports.Chat.StreamChat(r.Context(), req.SessionID, req.Message, handler)
	if err != nil {
		if !failed {
			stream.Error(err.Error())
		}
		return
	}
	stream.Done()
}

func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	turns, err := s.ports.Chat.History(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]turnResponse, len(turns))
	for i, t := range turns {
		out[i] = turnResponse{Role: t.Role, Content: t.Content}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"history":    out,
	})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	if err := s.ports.Chat.ClearSession(r.Context(), sessionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": sessionID, "status": "cleared"})
}
