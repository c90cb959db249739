package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yoyofushi/feedbot/src/aisdk"
	"github.com/yoyofushi/feedbot/src/executor"
)

// ChatRequest is the JSON body for POST /api/agent/chat.
type ChatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	BabyID         int64  `json:"baby_id"`
	UserID         int64  `json:"user_id,omitempty"`
	Message        string `json:"message"`
}

// MessagesResponse is the JSON body for GET /api/agent/conversations/{id}/messages.
type MessagesResponse struct {
	ConversationID string          `json:"conversation_id"`
	Messages       []aisdk.Message `json:"messages"`
}

// ToolsResponse is the JSON body for GET /api/agent/tools.
type ToolsResponse struct {
	Tools []*aisdk.ChatTool `json:"tools"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleChat runs one agent turn and streams its events as SSE data
// lines. A blank conversation_id starts a fresh conversation under a
// server-generated id; the client learns the id from the done event.
// Client disconnect cancels the request context and with it the turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req, err := parseChatRequest(r.Body)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = "conv_" + uuid.New().String()
	}

	// Fail before any SSE bytes go out if the writer cannot stream.
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("streaming not supported")
		s.writeJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sink := executor.NewChannelEventSink(0)
	go func() {
		defer sink.Close()
		turn := &executor.TurnRequest{
			ConversationID: req.ConversationID,
			BabyID:         req.BabyID,
			UserID:         req.UserID,
			Message:        req.Message,
		}
		if err := s.engine.RunTurn(r.Context(), turn, sink); err != nil {
			s.logger.Error("turn aborted", "conversation_id", req.ConversationID, "error", err)
		}
	}()

	s.streamEvents(r.Context(), w, flusher, sink.Events())
}

// streamEvents copies engine events to the client until the sink drains
// or the client goes away.
func (s *Server) streamEvents(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, events <-chan *executor.TurnEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				s.logger.Error("failed to marshal event", "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// handleConversationMessages serves GET /api/agent/conversations/{id}/messages.
// Unknown or expired conversations read as empty histories.
func (s *Server) handleConversationMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	const (
		prefix = "/api/agent/conversations/"
		suffix = "/messages"
	)
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		s.writeJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}
	conversationID := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	if conversationID == "" {
		s.writeJSONError(w, http.StatusBadRequest, "缺少conversation_id参数")
		return
	}

	messages := s.engine.Messages(conversationID)
	if messages == nil {
		messages = []aisdk.Message{}
	}
	s.writeJSON(w, http.StatusOK, MessagesResponse{
		ConversationID: conversationID,
		Messages:       messages,
	})
}

// handleTools serves GET /api/agent/tools.
func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	tools := s.tools
	if tools == nil {
		tools = []*aisdk.ChatTool{}
	}
	s.writeJSON(w, http.StatusOK, ToolsResponse{Tools: tools})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// parseChatRequest decodes and validates a chat request body.
func parseChatRequest(r io.Reader) (*ChatRequest, error) {
	var req ChatRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.New("请求格式错误")
	}
	if req.BabyID <= 0 {
		return nil, errors.New("缺少baby_id参数")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, errors.New("缺少message参数")
	}
	return &req, nil
}
