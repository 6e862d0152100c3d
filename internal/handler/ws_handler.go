package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/middleware"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/service"
	ws "github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/websocket"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// tickInterval is how often the authoritative clock is pushed to the client.
const tickInterval = 5 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the session clock to students and accepts lightweight
// frames (ping, violation) in return.
type WSHandler struct {
	rdb            *redis.Client
	sessionService *service.ExamSessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, sessionService *service.ExamSessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:            rdb,
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/student/exams/:exam_id/stream
// Pushes the authoritative remaining time and lock state every tick, so the
// client timer cannot drift from the server's.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	rawConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(rawConn)
	defer conn.Close()

	studentID := claims.UserID

	wsLog := h.log.With().
		Int("student_id", studentID).
		Str("exam_id", examID.String()).
		Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The stream only attaches to sessions that already exist.
	if _, err := h.sessionService.Clock(ctx, examID, studentID); err != nil {
		conn.WriteError("no session for this exam")
		return
	}

	wsLog.Info().Msg("Student connected")

	go h.pushTicks(ctx, conn, wsLog, examID, studentID)

	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		case ws.ActionViolation:
			h.handleViolation(ctx, conn, wsLog, examID, studentID, &msg)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// pushTicks sends the clock until the context is cancelled or the session
// stops being tickable.
func (h *WSHandler) pushTicks(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, examID uuid.UUID, studentID int) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		clock, err := h.sessionService.Clock(ctx, examID, studentID)
		if err != nil {
			// Session deleted by a reset, or the store is down. Either way
			// the stream has nothing left to say.
			wsLog.Debug().Err(err).Msg("Clock fetch failed, stopping ticks")
			return
		}

		tick := ws.TickResponse{
			Event:            ws.EventTick,
			Status:           string(clock.Status),
			RemainingSeconds: clock.RemainingSeconds,
			IsLocked:         clock.IsLocked,
			ViolationCount:   clock.ViolationCount,
		}
		if err := conn.WriteTyped(tick); err != nil {
			return
		}
	}
}

// handleViolation mirrors the HTTP violation endpoint for clients that keep
// the socket open instead.
func (h *WSHandler) handleViolation(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, examID uuid.UUID, studentID int, msg *ws.RequestPayload) {
	if msg.Reason == "" {
		conn.WriteError("reason is required")
		return
	}

	session, err := h.sessionService.ReportViolation(ctx, examID, studentID, msg.Reason, msg.Count, msg.Lock)
	if err != nil {
		wsLog.Error().Err(err).Msg("Violation report failed")
		conn.WriteError("violation report failed")
		return
	}

	job := worker.ViolationJob{
		ExamID:    examID.String(),
		StudentID: studentID,
		Reason:    msg.Reason,
		Count:     session.ViolationCount,
		Locked:    session.IsLocked,
		Timestamp: time.Now().Unix(),
	}
	if err := worker.EnqueueViolation(ctx, h.rdb, job); err != nil {
		wsLog.Error().Err(err).Msg("Failed to enqueue violation audit entry")
	}

	conn.WriteTyped(ws.ViolationAckResponse{
		Event:          ws.EventViolationAck,
		ViolationCount: session.ViolationCount,
		IsLocked:       session.IsLocked,
	})
}
