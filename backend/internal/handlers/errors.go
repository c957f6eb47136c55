package handlers

import (
	"errors"
	"net/http"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

// handleServiceError maps the service error taxonomy onto HTTP statuses.
// Anything outside the taxonomy collapses to a generic 500 so database
// details never reach the client.
func handleServiceError(c *gin.Context, err error) {
	var forbiddenErr *services.ForbiddenError
	var conflictErr *services.ConflictError
	var validationErr *services.ValidationError

	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.As(err, &forbiddenErr):
		c.JSON(http.StatusForbidden, gin.H{"error": forbiddenErr.Reason})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Reason})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Reason})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
	}
}

// currentUserID reads the caller identity set by the auth middleware.
// Returns false after writing a 401 when the middleware did not run.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return uuid.Nil, false
	}
	str, _ := raw.(string)
	id := uuid.FromStringOrNil(str)
	if id == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a UUID path parameter. Returns false after writing a
// 404: a malformed id can never name an existing resource.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id := uuid.FromStringOrNil(c.Param(name))
	if id == uuid.Nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}
