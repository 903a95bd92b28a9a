package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/mtessier/ircc-rag/internal/models"
	"github.com/mtessier/ircc-rag/pkg/retriever"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Retriever and Answerer are the two collaborators the service shell needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedRow, error)
}

type Answerer interface {
	Answer(ctx context.Context, question, sourceContext string) (string, error)
}

type ChatRequest struct {
	Question string `json:"question"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

// Message is the websocket frame: status updates, retrieved sources, then the
// answer, each as its own typed message.
type Message struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Data    any    `json:"data,omitempty"`
}

type Server struct {
	retriever Retriever
	engine    Answerer
	logger    *slog.Logger
}

func New(retriever Retriever, engine Answerer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		retriever: retriever,
		engine:    engine,
		logger:    logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		s.writeJSON(w, ChatResponse{Answer: "Please ask a question."})
		return
	}

	answer, err := s.answer(r.Context(), question)
	if err != nil {
		s.logger.Error("chat request failed", "error", err)
		http.Error(w, "failed to answer question", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, ChatResponse{Answer: answer})
}

func (s *Server) answer(ctx context.Context, question string) (string, error) {
	rows, err := s.retriever.Retrieve(ctx, question, 0)
	if err != nil {
		return "", err
	}
	return s.engine.Answer(ctx, question, retriever.BuildContext(rows))
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.sendMessage(conn, "error", "invalid message")
			continue
		}

		s.handleMessage(r.Context(), conn, msg)
	}
}

func (s *Server) handleMessage(ctx context.Context, conn *websocket.Conn, msg Message) {
	question := strings.TrimSpace(msg.Content)
	if question == "" {
		s.sendMessage(conn, "error", "Please ask a question.")
		return
	}

	s.sendMessage(conn, "status", "Searching sources...")

	rows, err := s.retriever.Retrieve(ctx, question, 0)
	if err != nil {
		s.logger.Error("retrieval failed", "error", err)
		s.sendMessage(conn, "error", "failed to search sources")
		return
	}

	urls := make([]string, 0, len(rows))
	for _, row := range rows {
		urls = append(urls, row.URL)
	}
	s.send(conn, Message{Type: "sources", Data: urls})

	answer, err := s.engine.Answer(ctx, question, retriever.BuildContext(rows))
	if err != nil {
		s.logger.Error("generation failed", "error", err)
		s.sendMessage(conn, "error", "failed to generate answer")
		return
	}
	s.sendMessage(conn, "answer", answer)
}

func (s *Server) sendMessage(conn *websocket.Conn, msgType, content string) {
	s.send(conn, Message{Type: msgType, Content: content})
}

func (s *Server) send(conn *websocket.Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Error("failed to send message", "error", err)
	}
}
