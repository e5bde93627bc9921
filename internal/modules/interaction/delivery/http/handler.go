package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nandaraf/famtask/internal/modules/interaction/dto"
	interactionService "github.com/nandaraf/famtask/internal/modules/interaction/service"
	"github.com/nandaraf/famtask/pkg/response"
	"github.com/nandaraf/famtask/pkg/validator"
)

type InteractionHandler struct {
	service interactionService.InteractionService
}

func NewInteractionHandler(service interactionService.InteractionService) *InteractionHandler {
	return &InteractionHandler{service: service}
}

func (h *InteractionHandler) CreateInteraction(c *gin.Context) {
	var req dto.CreateInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	giverID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), giverID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *InteractionHandler) GetReceived(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	interactions, err := h.service.ListReceived(c.Request.Context(), userID, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": interactions})
}
