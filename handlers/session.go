package handlers

import (
	"errors"
	"net/http"

	"rya_attendance_backend/metrics"
	"rya_attendance_backend/models"
	"rya_attendance_backend/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SessionHeader = "X-Session-ID"
	sessionKey    = "session"
)

type SessionHandler struct {
	sessions *store.Sessions
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewSessionHandler(sessions *store.Sessions, m *metrics.Metrics, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, metrics: m, logger: logger}
}

// SessionMiddleware resolves the caller's session from the X-Session-ID
// header. Requests without a live session are refused; only POST /session
// opens one.
func (h *SessionHandler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(SessionHeader)
		if raw == "" {
			abortSession(c, "Session required")
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			abortSession(c, "Invalid session id")
			return
		}
		sess, ok := h.sessions.Get(id)
		if !ok {
			h.logger.Info("unknown or expired session", zap.String("session_id", raw))
			abortSession(c, "Session expired")
			return
		}
		h.attach(c, sess)
		c.Next()
	}
}

// abortSession sends the client back to POST /session.
func abortSession(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": msg,
		"retry": "/session",
	})
}

func (h *SessionHandler) attach(c *gin.Context, sess *store.Session) {
	c.Set(sessionKey, sess)
	c.Header(SessionHeader, sess.ID.String())
}

func currentSession(c *gin.Context) *store.Session {
	return c.MustGet(sessionKey).(*store.Session)
}

// CreateSession always starts a fresh session with a newly loaded roster.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	sess, err := h.sessions.Open(c.Request.Context())
	if err != nil {
		reason := "error"
		switch {
		case errors.Is(err, store.ErrMissingResource):
			reason = "missing"
		case errors.Is(err, store.ErrMalformedResource):
			reason = "malformed"
		}
		h.metrics.SessionsFailed.WithLabelValues(reason).Inc()
		h.logger.Error("failed to open session", zap.Error(err))
		writeError(c, err)
		return
	}
	h.attach(c, sess)
	c.JSON(http.StatusCreated, describe(sess))
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, describe(currentSession(c)))
}

func describe(sess *store.Session) models.SessionResponse {
	state := sess.State()
	return models.SessionResponse{
		SessionID: state.ID.String(),
		ActiveDay: state.ActiveDay,
		Days:      state.Days,
		Total:     state.Total,
	}
}

// SelectDay sets the active day used when a request names none.
func (h *SessionHandler) SelectDay(c *gin.Context) {
	var req models.SelectDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := currentSession(c)
	if err := sess.SelectDay(req.Day); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, describe(sess))
}

// PersistSession retries writing the session's roster back.
func (h *SessionHandler) PersistSession(c *gin.Context) {
	err := currentSession(c).Do(func(st *store.Store) error {
		return st.Persist(c.Request.Context())
	})
	if err != nil {
		h.metrics.PersistFailures.Inc()
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attendance saved"})
}

// CloseSession discards the session.
func (h *SessionHandler) CloseSession(c *gin.Context) {
	sess := currentSession(c)
	h.sessions.Close(sess.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Session closed"})
}
