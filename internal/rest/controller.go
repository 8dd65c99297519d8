package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/injurywire/internal/model"
	"github.com/ppiankov/injurywire/internal/resolve"
	"github.com/ppiankov/injurywire/internal/store"
)

const requestTimeout = 5 * time.Second

// Reader is the read side of the store the API needs
type Reader interface {
	Current(ctx context.Context, key model.Key) (model.Assumption, error)
	List(ctx context.Context, f store.ListFilter) ([]model.Assumption, error)
	History(ctx context.Context, key model.Key, limit int) ([]store.LogEntry, error)
	LatestRun(ctx context.Context) (model.Run, error)
}

// Resolver maps a free-text name to a player
type Resolver interface {
	ResolveMatch(name string) resolve.Match
}

// Controller serves the injurywire API
type Controller struct {
	reader   Reader
	resolver Resolver
}

// NewController creates a controller. resolver may be nil to disable /resolve.
func NewController(reader Reader, resolver Resolver) *Controller {
	return &Controller{reader: reader, resolver: resolver}
}

// RegisterRoutes mounts the API on rg
func (c *Controller) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/runs/latest", c.handleLatestRun)
	rg.GET("/assumptions", c.handleListAssumptions)
	rg.GET("/assumptions/:player_id", c.handleCurrentAssumption)
	rg.GET("/assumptions/:player_id/history", c.handleHistory)
	rg.GET("/resolve", c.handleResolve)
}

func (c *Controller) handleLatestRun(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	run, err := c.reader.LatestRun(reqCtx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, run)
}

func (c *Controller) handleListAssumptions(ctx *gin.Context) {
	var f store.ListFilter
	if raw := ctx.Query("player_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid player_id"})
			return
		}
		f.PlayerID = id
	}
	if raw := ctx.Query("since"); raw != "" {
		t, ok := model.ParseTime(raw)
		if !ok {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid since"})
			return
		}
		f.Since = model.FormatTimestamp(t)
	}
	limit, ok := parseLimit(ctx, 100)
	if !ok {
		return
	}
	f.Limit = limit

	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	list, err := c.reader.List(reqCtx, f)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if list == nil {
		list = []model.Assumption{}
	}
	ctx.JSON(http.StatusOK, list)
}

func (c *Controller) handleCurrentAssumption(ctx *gin.Context) {
	key, ok := parseKey(ctx)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	a, err := c.reader.Current(reqCtx, key)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, a)
}

func (c *Controller) handleHistory(ctx *gin.Context) {
	key, ok := parseKey(ctx)
	if !ok {
		return
	}
	limit, ok := parseLimit(ctx, 50)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	entries, err := c.reader.History(reqCtx, key, limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if entries == nil {
		entries = []store.LogEntry{}
	}
	ctx.JSON(http.StatusOK, entries)
}

func (c *Controller) handleResolve(ctx *gin.Context) {
	if c.resolver == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "resolver not configured"})
		return
	}
	name := strings.TrimSpace(ctx.Query("name"))
	if name == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	m := c.resolver.ResolveMatch(name)
	if !m.Resolved() {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no player matched", "name": name})
		return
	}
	ctx.JSON(http.StatusOK, m)
}

func parseKey(ctx *gin.Context) (model.Key, bool) {
	id, err := strconv.ParseInt(ctx.Param("player_id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid player_id"})
		return model.Key{}, false
	}
	return model.Key{PlayerID: id, GameID: ctx.Query("game_id")}, true
}

func parseLimit(ctx *gin.Context, def int) (int, bool) {
	raw := ctx.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return 0, false
	}
	return n, true
}

func writeError(ctx *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
