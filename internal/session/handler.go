package session

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sposusu/eat-aware-scheduler/internal/auth"
	"github.com/sposusu/eat-aware-scheduler/internal/core"
	"github.com/sposusu/eat-aware-scheduler/internal/middleware"
	"github.com/sposusu/eat-aware-scheduler/internal/valuation"
)

// MaxImageBytes caps an uploaded plate photo.
const MaxImageBytes = 10 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the session routes. Everything except creation needs a
// session token.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/sessions", h.Create)

	me := r.Group("/sessions/me")
	me.Use(middleware.SessionAuth())
	{
		me.GET("", h.State)
		me.PUT("/mode", h.SetMode)
		me.POST("/catalog/refresh", h.RefreshCatalog)

		me.POST("/plate/image", h.UploadImage)
		me.POST("/plate/recognize", h.Recognize)
		me.POST("/plate/manual", h.StartManual)
		me.POST("/plate/rows", h.AddRow)
		me.PATCH("/plate/rows/:index", h.UpdateRow)
		me.POST("/plate/rows/:index/select", h.SelectSuggestion)
		me.POST("/plate/rows/:index/count", h.AdjustCount)
		me.DELETE("/plate/rows/:index", h.RemoveRow)
		me.POST("/plate/commit", h.Commit)
		me.POST("/plate/discard", h.Discard)

		me.GET("/history", h.History)
		me.PUT("/history", h.ReplaceHistory)
		me.PATCH("/history/:index", h.UpdateHistoryItem)
		me.DELETE("/history/:index", h.RemoveHistoryItem)
		me.DELETE("/history", h.ClearHistory)

		me.GET("/guide", h.Guide)
	}
}

// POST /api/sessions
func (h *Handler) Create(c *gin.Context) {
	userID, err := h.service.Create(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := auth.GenerateToken(userID)
	if err != nil {
		_ = h.service.Delete(c.Request.Context(), userID)
		log.Error().Err(err).Msg("token generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue session token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"userId": userID,
		"token":  token,
	})
}

// GET /api/sessions/me
func (h *Handler) State(c *gin.Context) {
	v, err := h.service.State(c.Request.Context(), middleware.UserID(c))
	respond(c, v, err)
}

// PUT /api/sessions/me/mode
func (h *Handler) SetMode(c *gin.Context) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	v, err := h.service.SetMode(c.Request.Context(), middleware.UserID(c), req.Mode)
	respond(c, v, err)
}

// POST /api/sessions/me/catalog/refresh
func (h *Handler) RefreshCatalog(c *gin.Context) {
	info, err := h.service.RefreshCatalog(c.Request.Context(), middleware.UserID(c))
	respond(c, info, err)
}

// POST /api/sessions/me/plate/image
func (h *Handler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		writeError(c, core.ErrMissingImage)
		return
	}
	if file.Size > MaxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image"})
		return
	}

	mime := file.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}

	v, err := h.service.Capture(c.Request.Context(), middleware.UserID(c), core.Image{Data: data, MIME: mime})
	respond(c, v, err)
}

// POST /api/sessions/me/plate/recognize
func (h *Handler) Recognize(c *gin.Context) {
	v, err := h.service.Recognize(c.Request.Context(), middleware.UserID(c))
	respond(c, v, err)
}

// POST /api/sessions/me/plate/manual
func (h *Handler) StartManual(c *gin.Context) {
	v, err := h.service.StartManual(c.Request.Context(), middleware.UserID(c))
	respond(c, v, err)
}

// POST /api/sessions/me/plate/rows
func (h *Handler) AddRow(c *gin.Context) {
	v, err := h.service.AddRow(c.Request.Context(), middleware.UserID(c))
	respond(c, v, err)
}

// PATCH /api/sessions/me/plate/rows/:index
func (h *Handler) UpdateRow(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}

	var p RowPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	v, suggestions, err := h.service.UpdateRow(c.Request.Context(), middleware.UserID(c), i, p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"plate":       v,
		"suggestions": suggestions,
	})
}

// POST /api/sessions/me/plate/rows/:index/select
func (h *Handler) SelectSuggestion(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	v, err := h.service.SelectSuggestion(c.Request.Context(), middleware.UserID(c), i, req.Name)
	respond(c, v, err)
}

// POST /api/sessions/me/plate/rows/:index/count
func (h *Handler) AdjustCount(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}

	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	v, err := h.service.AdjustCount(c.Request.Context(), middleware.UserID(c), i, req.Delta)
	respond(c, v, err)
}

// DELETE /api/sessions/me/plate/rows/:index
func (h *Handler) RemoveRow(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}

	v, err := h.service.RemoveRow(c.Request.Context(), middleware.UserID(c), i)
	respond(c, v, err)
}

// POST /api/sessions/me/plate/commit
func (h *Handler) Commit(c *gin.Context) {
	res, err := h.service.Commit(c.Request.Context(), middleware.UserID(c))
	respond(c, res, err)
}

// POST /api/sessions/me/plate/discard
func (h *Handler) Discard(c *gin.Context) {
	v, err := h.service.Discard(c.Request.Context(), middleware.UserID(c))
	respond(c, v, err)
}

// GET /api/sessions/me/history
func (h *Handler) History(c *gin.Context) {
	v, err := h.service.History(c.Request.Context(), middleware.UserID(c))
	respond(c, v, err)
}

// PUT /api/sessions/me/history
func (h *Handler) ReplaceHistory(c *gin.Context) {
	var req struct {
		Items []core.PlateItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	v, sync, err := h.service.ReplaceHistory(c.Request.Context(), middleware.UserID(c), req.Items)
	respondHistory(c, v, sync, err)
}

// PATCH /api/sessions/me/history/:index
func (h *Handler) UpdateHistoryItem(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}

	var item core.PlateItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	v, sync, err := h.service.UpdateHistoryItem(c.Request.Context(), middleware.UserID(c), i, item)
	respondHistory(c, v, sync, err)
}

// DELETE /api/sessions/me/history/:index
func (h *Handler) RemoveHistoryItem(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}

	v, sync, err := h.service.RemoveHistoryItem(c.Request.Context(), middleware.UserID(c), i)
	respondHistory(c, v, sync, err)
}

// DELETE /api/sessions/me/history?confirm=true
func (h *Handler) ClearHistory(c *gin.Context) {
	confirm, _ := strconv.ParseBool(c.Query("confirm"))

	v, sync, err := h.service.ClearHistory(c.Request.Context(), middleware.UserID(c), confirm)
	respondHistory(c, v, sync, err)
}

// GET /api/sessions/me/guide?category=&sort=&ranking=
func (h *Handler) Guide(c *gin.Context) {
	ranking, _ := strconv.ParseBool(c.Query("ranking"))

	sort := valuation.SortOrder(c.DefaultQuery("sort", string(valuation.SortCPDesc)))
	switch sort {
	case valuation.SortCPDesc, valuation.SortPriceDesc, valuation.SortCaloriesAsc:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort"})
		return
	}

	opts := valuation.GuideOptions{
		Category:          c.DefaultQuery("category", valuation.AllCategories),
		Sort:              sort,
		Ranking:           ranking,
		ExcludeLowCalorie: c.DefaultQuery("excludeLowCalorie", "true") != "false",
	}

	v, err := h.service.Guide(c.Request.Context(), middleware.UserID(c), opts)
	respond(c, v, err)
}

// ------------------------------------------------------------

func index(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil || i < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return 0, false
	}
	return i, true
}

func respond(c *gin.Context, body any, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func respondHistory(c *gin.Context, v *HistoryView, sync *SyncStatus, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"history":   v,
		"synced":    sync.Synced,
		"syncError": sync.SyncError,
		"userData":  sync.UserData,
	})
}

func writeError(c *gin.Context, err error) {
	switch {
	case core.IsInputError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, core.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("session request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalMessage(err)})
	}
}

// internalMessage is the client-facing text for a 500. Upstream and store
// details stay in the log.
func internalMessage(err error) string {
	var up *core.UpstreamError
	if errors.As(err, &up) {
		return "recognition service unavailable"
	}
	return "internal server error"
}
