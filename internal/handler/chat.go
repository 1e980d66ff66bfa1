package handler

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/talberry/sdsu-study-bot/internal/ai/agent"
	"github.com/talberry/sdsu-study-bot/internal/model"
	httputil "github.com/talberry/sdsu-study-bot/internal/pkg/http"
	"github.com/talberry/sdsu-study-bot/internal/service"
)

// ChatHandler chat endpoints
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates the chat handler
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat answers one message, as JSON or as an SSE stream
// @Summary      Chat with the study assistant
// @Description  Runs the tool-calling conversation loop. Streams progress as text/event-stream when stream=true or Accept is text/event-stream.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Produce      text/event-stream
// @Param        Authorization  header    string             false  "Bearer <Canvas access token>"
// @Param        request        body      model.ChatRequest  true   "chat request"
// @Success      200            {object}  model.ChatResponse
// @Failure      400            {object}  ErrorResponse  "invalid body or missing message"
// @Failure      500            {object}  ErrorResponse  "step limit exceeded"
// @Failure      502            {object}  ErrorResponse  "model unavailable"
// @Router       /api/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, httputil.CodeInvalidBody, "Invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		badRequest(c, httputil.CodeMissingParam, "Missing required field: message", "")
		return
	}

	in := &service.ChatInput{
		Message: req.Message,
		Token:   requestToken(c, req.Token),
		Stream:  req.Stream || acceptsEventStream(c),
	}
	if in.Stream {
		h.stream(c, in)
		return
	}

	res, err := h.chat.Chat(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ChatResponse{
		Text:      res.Text,
		Message:   res.Message,
		ToolTrace: res.ToolTrace,
	})
}

// stream runs the conversation and emits tool, final and error events
func (h *ChatHandler) stream(c *gin.Context, in *service.ChatInput) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	w := &eventWriter{c: c}
	in.Reporter = agent.ReporterFuncs{
		Started: func(e agent.ToolEvent) {
			w.send(model.StreamEvent{Type: model.StreamEventTool, Step: e.Step, Name: e.Name, Status: model.ToolStarted, Input: e.Input})
		},
		Completed: func(e agent.ToolEvent) {
			w.send(model.StreamEvent{Type: model.StreamEventTool, Step: e.Step, Name: e.Name, Status: model.ToolCompleted, Input: e.Input, Output: e.Output, Error: e.Error})
		},
	}

	res, err := h.chat.Chat(c.Request.Context(), in)
	if err != nil {
		_, _, message := classify(err)
		w.send(model.StreamEvent{Type: model.StreamEventError, Error: message})
		return
	}
	w.send(model.NewFinalEvent(res.Text, res.ToolTrace))
}

// eventWriter serializes SSE frames from concurrent tool callbacks
type eventWriter struct {
	mu sync.Mutex
	c  *gin.Context
}

// send writes one frame; evt is a StreamEvent or a FinalEvent
func (w *eventWriter) send(evt any) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// client went away
	if w.c.Request.Context().Err() != nil {
		return
	}
	w.c.Render(-1, sse.Event{Data: evt})
	w.c.Writer.Flush()
}

func acceptsEventStream(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}

// ListRuns recent conversation audit records
// @Summary      List recent chat runs
// @Tags         chat
// @Produce      json
// @Param        limit  query     int  false  "max records (default 20)"
// @Success      200    {object}  map[string]interface{}  "{\"runs\": [...]}"
// @Failure      400    {object}  ErrorResponse
// @Router       /api/chat/runs [get]
func (h *ChatHandler) ListRuns(c *gin.Context) {
	limit, err := queryInt64(c, "limit")
	if err != nil {
		badRequest(c, httputil.CodeMissingParam, "Invalid query parameter", err.Error())
		return
	}
	runs, err := h.chat.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun one conversation audit record
// @Summary      Get a chat run
// @Tags         chat
// @Produce      json
// @Param        run_id  path      string  true  "run id"
// @Success      200     {object}  model.ChatRun
// @Failure      404     {object}  ErrorResponse
// @Router       /api/chat/runs/{run_id} [get]
func (h *ChatHandler) GetRun(c *gin.Context) {
	run, err := h.chat.GetRun(c.Request.Context(), c.Param("run_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
