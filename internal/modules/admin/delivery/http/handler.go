package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nandaraf/famtask/internal/entity"
	"github.com/nandaraf/famtask/internal/modules/admin/dto"
	adminService "github.com/nandaraf/famtask/internal/modules/admin/service"
	notifService "github.com/nandaraf/famtask/internal/modules/notification/service"
	scoring "github.com/nandaraf/famtask/internal/modules/scoring/service"
	"github.com/nandaraf/famtask/pkg/apperror"
	"github.com/nandaraf/famtask/pkg/response"
	"github.com/nandaraf/famtask/pkg/validator"
)

type AdminHandler struct {
	adminService   adminService.AdminService
	scoringService scoring.Service
	notifService   notifService.NotificationService
}

func NewAdminHandler(admin adminService.AdminService, scoringSvc scoring.Service, notif notifService.NotificationService) *AdminHandler {
	return &AdminHandler{
		adminService:   admin,
		scoringService: scoringSvc,
		notifService:   notif,
	}
}

func (h *AdminHandler) CreateMember(c *gin.Context) {
	var input dto.CreateMemberInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.adminService.CreateMember(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AdminHandler) GetAllMembers(c *gin.Context) {
	res, total, err := h.adminService.GetAllMembers(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res, "total": total})
}

func (h *AdminHandler) UpdateMember(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var input dto.UpdateMemberInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.adminService.UpdateMember(c.Request.Context(), id, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) DeleteMember(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.adminService.DeleteMember(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member deleted"})
}

// CheckOverdue runs the overdue penalty sweep for one member. Safe to call
// repeatedly, already penalized tasks are skipped.
func (h *AdminHandler) CheckOverdue(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	outcome, err := h.scoringService.CheckOverdueTasks(c.Request.Context(), userID, time.Now())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if len(outcome.MissedTaskIDs) > 0 && h.notifService != nil {
		actorID := userID
		if admin, exists := c.Get("user"); exists {
			if adminUser, ok := admin.(*entity.User); ok {
				actorID = adminUser.ID
			}
		}

		notif := &entity.Notification{
			UserID:     userID,
			ActorID:    actorID,
			EntityID:   outcome.MissedTaskIDs[0],
			EntityType: "task",
			Type:       entity.NotificationTaskMissed,
			Message:    fmt.Sprintf("%d task(s) marked as missed, %d points deducted", len(outcome.MissedTaskIDs), outcome.TotalPenalty),
		}
		if err := h.notifService.CreateNotification(c.Request.Context(), notif); err != nil {
			response.ResponseError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, outcome)
}
