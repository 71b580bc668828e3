package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"orbit/internal/ledger"
	"orbit/internal/services"
)

// DataHandler serves the stored ledger document and its statistics.
type DataHandler struct {
	userService   services.UserServicer
	ledgerService services.LedgerServicer
}

// NewDataHandler creates a new DataHandler.
func NewDataHandler(userService services.UserServicer, ledgerService services.LedgerServicer) *DataHandler {
	return &DataHandler{userService: userService, ledgerService: ledgerService}
}

// SyncRequest replaces the stored ledger. Version, when sent, must match the
// stored version for the write to be accepted.
type SyncRequest struct {
	OrbitData *ledger.Ledger `json:"orbitData" binding:"omitempty,dive,dive"`
	Version   *int64         `json:"version" binding:"omitempty,gte=0"`
}

// ProfileResponse is the account together with its ledger.
type ProfileResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	OrbitData ledger.Ledger `json:"orbitData"`
	Version   int64         `json:"version"`
}

// Me returns the user's profile and ledger
// @Summary     Get profile and ledger
// @Description Get the authenticated user's account, ledger and ledger version
// @Tags        data
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ProfileResponse "Profile and ledger"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /data/me [get]
func (h *DataHandler) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data := user.OrbitData
	if data == nil {
		data = ledger.Ledger{}
	}
	c.JSON(http.StatusOK, ProfileResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		OrbitData: data,
		Version:   user.LedgerVersion,
	})
}

// Sync replaces the stored ledger
// @Summary     Sync ledger
// @Description Replace the whole stored ledger with the client's copy
// @Tags        data
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SyncRequest true "Ledger snapshot"
// @Success     200 {object} services.LedgerState "Stored ledger"
// @Failure     400 {object} ErrorResponse "Invalid ledger"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Ledger changed by another session"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /data/sync [post]
func (h *DataHandler) Sync(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	state, err := h.ledgerService.SyncLedger(userID, req.OrbitData, req.Version)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// Summary returns the statistics for one month
// @Summary     Month summary
// @Description Totals, top expense, average burn, category breakdown and the monthly series
// @Tags        data
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month as YYYY-MM (default current month)"
// @Param       q     query string false "Only list entries whose name or description contains this"
// @Success     200 {object} aggregate.Summary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /data/summary [get]
func (h *DataHandler) Summary(c *gin.Context) {
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

	summary, err := h.ledgerService.GetSummary(userID, key, c.Query("q"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
