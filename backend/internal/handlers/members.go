package handlers

import (
	"net/http"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MemberHandler struct {
	db            *gorm.DB
	memberService services.MemberService
	dashboards    DashboardInvalidator
}

func NewMemberHandler(db *gorm.DB, memberService services.MemberService, dashboards DashboardInvalidator) *MemberHandler {
	return &MemberHandler{db: db, memberService: memberService, dashboards: dashboards}
}

func (h *MemberHandler) AddMember(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input services.AddMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.memberService.AddMember(h.db, actorID, projectID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if h.dashboards != nil {
		h.dashboards.InvalidateProject(projectID)
	}
	c.JSON(http.StatusCreated, member)
}

func (h *MemberHandler) ListMembers(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	members, err := h.memberService.ListMembers(h.db, actorID, projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members, "total": len(members)})
}

func (h *MemberHandler) UpdateMemberRole(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	targetID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}

	var input services.UpdateMemberRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.memberService.UpdateMemberRole(h.db, actorID, projectID, targetID, input.Role)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) RemoveMember(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	targetID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}

	if err := h.memberService.RemoveMember(h.db, actorID, projectID, targetID); err != nil {
		handleServiceError(c, err)
		return
	}
	if h.dashboards != nil {
		h.dashboards.InvalidateProject(projectID)
	}
	c.JSON(http.StatusNoContent, nil)
}
