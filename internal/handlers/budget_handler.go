package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "orbit/internal/errors"
	"orbit/internal/services"
)

// BudgetHandler handles category shield requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// SetLimitRequest represents the request payload for creating or replacing a shield.
type SetLimitRequest struct {
	Category string  `json:"category" binding:"required,not_blank,max=100"`
	Limit    float64 `json:"limit" binding:"required,gt=0"`
}

// GetBudgets returns every shield as a category to limit map.
// @Summary     Get shields
// @Description Get the authenticated user's category limits
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]number "Category limits"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	limits, err := h.budgetService.GetBudgetMap(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, limits)
}

// SetLimit creates or replaces the shield of a category.
// @Summary     Set shield
// @Description Create or replace the spending limit of a category
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetLimitRequest true "Shield details"
// @Success     200 {object} models.Budget "Stored shield"
// @Failure     400 {object} ErrorResponse "Invalid limit"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) SetLimit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetLimitRequest
	if c.ShouldBindJSON(&req) != nil {
		respondWithError(c, apperrors.ErrInvalidLimit)
		return
	}

	budget, err := h.budgetService.SetLimit(userID, req.Category, req.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, budget)
}

// RemoveLimit deletes the shield of a category.
// @Summary     Remove shield
// @Description Delete the spending limit of a category. Removing a missing shield succeeds.
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       category path string true "Category name"
// @Success     200 {object} MessageResponse "Shield removed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{category} [delete]
func (h *BudgetHandler) RemoveLimit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	category := c.Param("category")
	if err := h.budgetService.RemoveLimit(userID, category); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Deleted shield for " + category})
}

// GetStatus returns the shield report for one month.
// @Summary     Shield report
// @Description Spend against limit for every category of the month
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month as YYYY-MM (default current month)"
// @Success     200 {array}  shield.Shield "Shield rows"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/status [get]
func (h *BudgetHandler) GetStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	key, err := parseMonth(c, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.budgetService.GetShieldReport(userID, key)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
