package handlers

import (
	"net/http"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// DashboardInvalidator drops cached summaries after a mutation changes
// the numbers behind them. A nil invalidator means nothing is cached.
type DashboardInvalidator interface {
	InvalidateProject(projectID uuid.UUID)
	InvalidateUser(userID uuid.UUID)
}

type DashboardHandler struct {
	db               *gorm.DB
	dashboardService services.DashboardService
}

func NewDashboardHandler(db *gorm.DB, dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{db: db, dashboardService: dashboardService}
}

func (h *DashboardHandler) GetProjectSummary(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	summary, err := h.dashboardService.ProjectSummary(h.db, actorID, projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) GetUserSummary(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	summary, err := h.dashboardService.UserSummary(h.db, actorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
