package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	subDto "github.com/nandaraf/famtask/internal/modules/submission/dto"
	subService "github.com/nandaraf/famtask/internal/modules/submission/service"
	"github.com/nandaraf/famtask/pkg/response"
	"github.com/nandaraf/famtask/pkg/validator"
)

type SubmissionHandler struct {
	service subService.SubmissionService
}

func NewSubmissionHandler(service subService.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

func (h *SubmissionHandler) SubmitAnswer(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req subDto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	outcome, err := h.service.Submit(c.Request.Context(), userID, taskID, req.Answer)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

func (h *SubmissionHandler) GetSubmissionsByTask(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	submissions, err := h.service.ListByTask(c.Request.Context(), userID, taskID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	out := make([]subDto.SubmissionResponse, 0, len(submissions))
	for _, s := range submissions {
		out = append(out, subDto.SubmissionResponse{
			ID:        s.ID,
			TaskID:    s.TaskID,
			Answer:    s.Answer,
			Correct:   s.Correct,
			Feedback:  s.Feedback,
			CreatedAt: s.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": out})
}
