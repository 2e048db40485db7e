package handlers

import (
	"errors"
	"net/http"

	"rya_attendance_backend/store"

	"github.com/gin-gonic/gin"
)

// writeError maps store errors to a status code and a readable message.
func writeError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "Something went wrong"

	switch {
	case errors.Is(err, store.ErrMissingResource):
		status, msg = http.StatusServiceUnavailable, "Attendance list not found"
	case errors.Is(err, store.ErrMalformedResource):
		status, msg = http.StatusUnprocessableEntity, "Attendance list is malformed"
	case errors.Is(err, store.ErrAuthorizationDenied):
		status, msg = http.StatusForbidden, "Invalid admin secret"
	case errors.Is(err, store.ErrUnknownDay):
		status, msg = http.StatusBadRequest, "Unknown trip day"
	case errors.Is(err, store.ErrUnknownAttendee):
		status, msg = http.StatusNotFound, "Attendee not found"
	case errors.Is(err, store.ErrPersistFailure):
		status, msg = http.StatusInternalServerError, "Failed to save attendance"
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg, "detail": err.Error()})
}

// persistWarning is the body fragment for a mutation that was applied in
// memory but could not be written back.
func persistWarning(err error) gin.H {
	return gin.H{
		"warning": "Change applied but not saved: " + err.Error(),
		"retry":   "/session/persist",
	}
}
