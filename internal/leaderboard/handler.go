package leaderboard

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sposusu/eat-aware-scheduler/internal/core"
	"github.com/sposusu/eat-aware-scheduler/internal/valuation"
)

const actionUpdateHistory = "updateHistory"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type postRequest struct {
	UserID         string           `json:"userId"`
	Action         string           `json:"action"`
	Items          []core.PlateItem `json:"items"`
	TotalPrice     float64          `json:"totalPrice"`
	TotalCalories  float64          `json:"totalCalories"`
	Timestamp      int64            `json:"timestamp"`
	UpdatedHistory []core.PlateItem `json:"updatedHistory"`
	PriceMode      string           `json:"priceMode"`
}

// POST /api/leaderboard
func (h *Handler) Post(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": core.ErrMissingUserID.Error()})
		return
	}

	var (
		agg *UserAggregate
		err error
	)

	switch req.Action {
	case actionUpdateHistory:
		mode, perr := valuation.ParseMode(req.PriceMode)
		if perr != nil {
			writeError(c, perr)
			return
		}
		agg, err = h.service.UpdateHistory(c.Request.Context(), req.UserID, req.UpdatedHistory, mode)
	case "":
		agg, err = h.service.Submit(c.Request.Context(), SubmitRequest{
			UserID:        req.UserID,
			Items:         req.Items,
			TotalPrice:    req.TotalPrice,
			TotalCalories: req.TotalCalories,
			Timestamp:     req.Timestamp,
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
		return
	}

	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"userData": agg,
	})
}

// GET /api/leaderboard
func (h *Handler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	switch c.Query("type") {
	case "dishes":
		dishes, err := h.service.Popularity(ctx)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"dishes": dishes})

	case "user":
		agg, err := h.service.User(ctx, c.Query("userId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userData": agg})

	case "categories":
		cats, err := h.service.CategoryBreakdown(ctx)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": cats})

	case "rank":
		metric, err := ParseMetric(c.Query("metric"))
		if err != nil {
			writeError(c, err)
			return
		}
		ranking, err := h.service.Rank(ctx, metric)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"metric": metric, "ranking": ranking})

	case "":
		board, err := h.service.Leaderboard(ctx)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, board)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown type"})
	}
}

// DELETE /api/admin/users/:id
func (h *Handler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func writeError(c *gin.Context, err error) {
	switch {
	case core.IsInputError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("leaderboard request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
