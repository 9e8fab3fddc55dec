package checkin

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/eventplanner/backend/internal/models"
	"github.com/eventplanner/backend/pkg/response"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// SubmitRequest is the body for POST /events/:id/checkins.
type SubmitRequest struct {
	Scope      string  `json:"scope" binding:"omitempty,oneof=EVENT SESSION ZONE"`
	ScopeRef   *string `json:"scope_ref"`
	AttendeeID *string `json:"attendee_id"`
	Name       string  `json:"name"`
	Code       string  `json:"code" binding:"required"`
}

// Handler handles check-in HTTP endpoints.
type Handler struct {
	bus    *Bus
	store  Store
	logger *zap.Logger
}

// NewHandler creates a check-in handler.
func NewHandler(bus *Bus, store Store, logger *zap.Logger) *Handler {
	if store == nil {
		store = EmptyStore{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{bus: bus, store: store, logger: logger}
}

// Register mounts the check-in routes on the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/events/:id/checkins", h.Submit)
	rg.GET("/events/:id/checkins", h.Search)
	rg.GET("/events/:id/checkins/live", h.Live)
	rg.GET("/events/:id/checkins/ws", h.LiveWS)
}

// Submit handles POST /events/:id/checkins.
func (h *Handler) Submit(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	rec := h.bus.Submit(c.Request.Context(), id, SubmitInput{
		Scope:      models.CheckInScope(req.Scope),
		ScopeRef:   req.ScopeRef,
		AttendeeID: req.AttendeeID,
		Name:       req.Name,
		Code:       req.Code,
	})
	response.Created(c, rec)
}

// Search handles GET /events/:id/checkins. Without an archive store behind it
// the result is always empty: the bus keeps no history.
func (h *Handler) Search(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	list, err := h.store.Search(c.Request.Context(), id, c.Query("q"), limit)
	if err != nil {
		h.logger.Error("check-in search failed", zap.String("event_id", id.String()), zap.Error(err))
		response.Internal(c, "search failed")
		return
	}
	response.OK(c, list)
}

// Live handles GET /events/:id/checkins/live as a server-sent event stream.
// The subscription ends when the client disconnects or the request times out.
func (h *Handler) Live(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	sub := h.bus.Subscribe(id)
	defer h.bus.Unsubscribe(sub)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, open := <-sub.Messages():
			if !open {
				return false
			}
			c.SSEvent(msg.Event, msg.Data)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// LiveWS handles GET /events/:id/checkins/ws: the same feed over a WebSocket.
func (h *Handler) LiveWS(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.bus.Subscribe(id)
	go h.writePump(conn, sub)
	h.readPump(conn, sub)
}

// readPump consumes (and discards) client frames so close and pong control
// messages are processed. Exiting tears the subscription down.
func (h *Handler) readPump(conn *websocket.Conn, sub *Subscription) {
	defer func() {
		h.bus.Unsubscribe(sub)
		_ = conn.Close()
	}()

	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (h *Handler) writePump(conn *websocket.Conn, sub *Subscription) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, open := <-sub.Messages():
			if !open {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func eventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return uuid.Nil, false
	}
	return id, true
}
