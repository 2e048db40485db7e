package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"rya_attendance_backend/metrics"
	"rya_attendance_backend/middleware"
	"rya_attendance_backend/models"
	"rya_attendance_backend/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AttendanceHandler struct {
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewAttendanceHandler(m *metrics.Metrics, logger *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{metrics: m, logger: logger}
}

// dayFor returns the requested day, falling back to the session's active day.
func dayFor(c *gin.Context, sess *store.Session, requested string) string {
	if requested != "" {
		return requested
	}
	if q := c.Query("day"); q != "" {
		return q
	}
	return sess.ActiveDay()
}

func progress(st *store.Store, day string) models.ProgressResponse {
	return models.ProgressResponse{
		Day:     day,
		Present: st.CountPresent(day),
		Total:   st.Total(),
		Ratio:   st.Ratio(day),
	}
}

func (h *AttendanceHandler) GetDays(c *gin.Context) {
	state := currentSession(c).State()
	c.JSON(http.StatusOK, gin.H{
		"days":       state.Days,
		"active_day": state.ActiveDay,
	})
}

// GetAttendees searches the roster by name: GET /attendees?q=ann&day=Jan%2011
func (h *AttendanceHandler) GetAttendees(c *gin.Context) {
	sess := currentSession(c)
	day := dayFor(c, sess, "")
	query := c.Query("q")

	attendees := []models.AttendeeResponse{}
	err := sess.Do(func(st *store.Store) error {
		if !st.HasDay(day) {
			return store.ErrUnknownDay
		}
		for _, id := range st.Matches(query) {
			a, err := st.Attendee(id)
			if err != nil {
				return err
			}
			attendees = append(attendees, models.AttendeeResponse{
				ID:     id,
				Name:   a.Name,
				Day:    day,
				Status: a.Status[day],
			})
		}
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, attendees)
}

// GetProgress returns the boarded counter for a day.
func (h *AttendanceHandler) GetProgress(c *gin.Context) {
	sess := currentSession(c)
	day := dayFor(c, sess, "")

	var resp models.ProgressResponse
	err := sess.Do(func(st *store.Store) error {
		if !st.HasDay(day) {
			return store.ErrUnknownDay
		}
		resp = progress(st, day)
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attendee id"})
		return
	}

	var req models.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := currentSession(c)
	day := dayFor(c, sess, req.Day)

	var attendee models.AttendeeResponse
	var prog models.ProgressResponse
	err = sess.Do(func(st *store.Store) error {
		opErr := st.CheckIn(c.Request.Context(), id, day)
		if opErr != nil && !errors.Is(opErr, store.ErrPersistFailure) {
			return opErr
		}
		a, _ := st.Attendee(id)
		attendee = models.AttendeeResponse{ID: id, Name: a.Name, Day: day, Status: a.Status[day]}
		prog = progress(st, day)
		return opErr
	})

	body := gin.H{"attendee": attendee, "progress": prog}
	switch {
	case err == nil:
	case errors.Is(err, store.ErrPersistFailure):
		h.metrics.PersistFailures.Inc()
		h.logger.Warn("check-in not saved", zap.Int("attendee_id", id), zap.String("day", day), zap.Error(err))
		for k, v := range persistWarning(err) {
			body[k] = v
		}
	default:
		writeError(c, err)
		return
	}

	h.metrics.CheckIns.WithLabelValues(day).Inc()
	c.JSON(http.StatusOK, body)
}

// ResetDay marks everyone absent for a day. The admin secret comes from a
// bearer token or the JSON body.
func (h *AttendanceHandler) ResetDay(c *gin.Context) {
	day := c.Param("day")

	token := middleware.BearerToken(c)
	if token == "" {
		var req models.ResetDayRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		token = req.Secret
	}

	sess := currentSession(c)
	var prog models.ProgressResponse
	err := sess.Do(func(st *store.Store) error {
		opErr := st.ResetDay(c.Request.Context(), day, token)
		if opErr == nil || errors.Is(opErr, store.ErrPersistFailure) {
			prog = progress(st, day)
		}
		return opErr
	})

	body := gin.H{"message": "Attendance reset", "progress": prog}
	switch {
	case err == nil:
	case errors.Is(err, store.ErrPersistFailure):
		h.metrics.PersistFailures.Inc()
		for k, v := range persistWarning(err) {
			body[k] = v
		}
	case errors.Is(err, store.ErrAuthorizationDenied):
		h.metrics.ResetsDenied.Inc()
		writeError(c, err)
		return
	default:
		writeError(c, err)
		return
	}

	h.metrics.Resets.WithLabelValues(day).Inc()
	c.JSON(http.StatusOK, body)
}
