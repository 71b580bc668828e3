package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"orbit/internal/advisor"
	"orbit/internal/services"
)

// AdvisorHandler handles the money checkup conversation.
type AdvisorHandler struct {
	advisorService services.AdvisorServicer
}

// NewAdvisorHandler creates a new AdvisorHandler.
func NewAdvisorHandler(advisorService services.AdvisorServicer) *AdvisorHandler {
	return &AdvisorHandler{advisorService: advisorService}
}

// CheckupRequest selects the month to review.
type CheckupRequest struct {
	Month string `json:"month" binding:"omitempty,month_key"`
}

// MessageRequest continues a conversation returned by a checkup.
type MessageRequest struct {
	Session advisor.Session `json:"session"`
	Message string          `json:"message" binding:"required,not_blank,max=2000"`
}

// Checkup opens a conversation about one month.
// @Summary     Money checkup
// @Description Ask the advisor for an observation, the biggest leak and one action
// @Tags        advisor
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CheckupRequest false "Month as YYYY-MM (default current month)"
// @Success     200 {object} services.AdvisorReply "Advice and conversation"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     429 {object} ErrorResponse "Advisor out of quota"
// @Failure     503 {object} ErrorResponse "Advisor offline"
// @Router      /advisor/checkup [post]
func (h *AdvisorHandler) Checkup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CheckupRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, bindError(err))
			return
		}
	}

	key, err := monthOrNow(req.Month, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	reply, err := h.advisorService.Checkup(c.Request.Context(), userID, key)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, reply)
}

// Message continues the conversation.
// @Summary     Ask the advisor
// @Description Send a follow-up message in a conversation opened by a checkup
// @Tags        advisor
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body MessageRequest true "Conversation and message"
// @Success     200 {object} services.AdvisorReply "Reply and conversation"
// @Failure     400 {object} ErrorResponse "Invalid input or no conversation"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     429 {object} ErrorResponse "Advisor out of quota"
// @Failure     503 {object} ErrorResponse "Advisor offline"
// @Router      /advisor/message [post]
func (h *AdvisorHandler) Message(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	reply, err := h.advisorService.Reply(c.Request.Context(), req.Session, req.Message)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, reply)
}
