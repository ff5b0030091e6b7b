package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lneuendorf/cfbsim/internal/apitypes"
	"github.com/lneuendorf/cfbsim/internal/cache"
	"github.com/lneuendorf/cfbsim/internal/config"
	"github.com/lneuendorf/cfbsim/internal/core"
	"github.com/lneuendorf/cfbsim/internal/core/oracle"
	"github.com/lneuendorf/cfbsim/internal/replay"
	"github.com/lneuendorf/cfbsim/internal/store"
	"github.com/lneuendorf/cfbsim/internal/websocket"
	"github.com/lneuendorf/cfbsim/pkg/database"
	"github.com/lneuendorf/cfbsim/pkg/logger"
)

// ReplayHandler runs and reports on Monte Carlo replay batches.
type ReplayHandler struct {
	db      *database.DB
	cache   *cache.ReplayCache
	oracles func() *oracle.Set
	wsHub   *websocket.Hub
	config  *config.Config
	logger  *logrus.Logger
}

// NewReplayHandler creates a new replay handler.
func NewReplayHandler(
	db *database.DB,
	cache *cache.ReplayCache,
	oracles func() *oracle.Set,
	wsHub *websocket.Hub,
	cfg *config.Config,
	logger *logrus.Logger,
) *ReplayHandler {
	return &ReplayHandler{
		db:      db,
		cache:   cache,
		oracles: oracles,
		wsHub:   wsHub,
		config:  cfg,
		logger:  logger,
	}
}

// RunReplayBatch handles POST /api/v1/replays: runs req.Iterations
// independent replays of one matchup and returns the aggregate result.
// Progress is streamed separately over /ws/replays/:id as the batch runs.
func (h *ReplayHandler) RunReplayBatch(c *gin.Context) {
	var req apitypes.ReplayBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apitypes.ErrorResponse{
			Error: "invalid request format",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	if err := h.validateReplayRequest(req); err != nil {
		c.JSON(http.StatusBadRequest, apitypes.ErrorResponse{
			Error: "invalid replay parameters",
			Code:  "INVALID_REPLAY_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	requestHash := hashReplayRequest(req)
	if cached, err := h.cache.GetBatchResult(c.Request.Context(), requestHash); err == nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	batchID := uuid.New()
	run := &store.BatchRun{
		ID:          batchID,
		HomeTeam:    req.Home.Name,
		AwayTeam:    req.Away.Name,
		HomeElo:     req.Home.EloRating,
		AwayElo:     req.Away.EloRating,
		NeutralSite: req.NeutralSite,
		Requested:   req.Iterations,
	}
	if h.db != nil {
		if err := store.CreateBatchRun(h.db, run); err != nil {
			h.logger.WithError(err).Warn("failed to persist batch run")
		}
	}

	input := core.NewGameStateInput{
		HomeElo:         req.Home.EloRating,
		AwayElo:         req.Away.EloRating,
		HomeDivision:    parseDivision(req.Home.Division),
		AwayDivision:    parseDivision(req.Away.Division),
		HomeIsPowerFive: req.Home.IsPowerFive,
		AwayIsPowerFive: req.Away.IsPowerFive,
		NeutralSite:     req.NeutralSite,
	}

	progressChan := make(chan replay.Progress, 16)
	go h.forwardProgressToWebSocket(batchID, req.Iterations, progressChan)

	start := time.Now()
	result := replay.Batch(input, h.oracles(), replay.BatchConfig{
		Iterations: req.Iterations,
		Workers:    h.config.SimulationWorkers,
	}, progressChan)

	batchResult := &apitypes.ReplayBatchResult{
		ID:        batchID,
		PWin:      result.PWin,
		PTie:      result.PTie,
		PLoss:     result.PLoss,
		Completed: result.Completed,
		Aborted:   result.Aborted,
		Requested: result.Requested,
		ElapsedMs: time.Since(start).Milliseconds(),
		CreatedAt: time.Now(),
	}
	if result.Requested > 0 {
		batchResult.AbortRate = float64(result.Aborted) / float64(result.Requested)
	}
	if result.Aborted > 0 {
		logger.WithBatchContext(batchID.String(), req.Home.Name, req.Away.Name).WithField("abort_counts", result.AbortCounts).
			Warn("replay batch had aborted replays")
	}

	if h.db != nil {
		if err := store.CompleteBatchRun(h.db, batchID, result.Completed, result.Aborted, result.PWin, result.PTie, result.PLoss, batchResult.ElapsedMs, result.AbortCounts); err != nil {
			h.logger.WithError(err).Warn("failed to record completed batch run")
		}
	}

	if err := h.cache.SetBatchResult(c.Request.Context(), requestHash, batchResult); err != nil {
		h.logger.WithError(err).Warn("failed to cache batch result")
	}

	logger.WithBatchContext(batchID.String(), req.Home.Name, req.Away.Name).WithFields(logrus.Fields{
		"iterations": req.Iterations,
		"elapsed_ms": batchResult.ElapsedMs,
	}).Info("replay batch completed")

	c.JSON(http.StatusOK, batchResult)
}

// GetReplayBatch handles GET /api/v1/replays/:id.
func (h *ReplayHandler) GetReplayBatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apitypes.ErrorResponse{Error: "invalid batch id", Code: "INVALID_ID"})
		return
	}

	if h.db == nil {
		c.JSON(http.StatusNotFound, apitypes.ErrorResponse{Error: "batch not found", Code: "BATCH_NOT_FOUND"})
		return
	}

	run, err := store.GetBatchRunByID(h.db, id)
	if err != nil {
		c.JSON(http.StatusNotFound, apitypes.ErrorResponse{Error: "batch not found", Code: "BATCH_NOT_FOUND"})
		return
	}

	result := apitypes.ReplayBatchResult{
		ID:        run.ID,
		PWin:      run.PWin,
		PTie:      run.PTie,
		PLoss:     run.PLoss,
		Completed: run.Completed,
		Aborted:   run.Aborted,
		Requested: run.Requested,
		ElapsedMs: run.ElapsedMs,
		CreatedAt: run.CreatedAt,
	}
	if run.Requested > 0 {
		result.AbortRate = float64(run.Aborted) / float64(run.Requested)
	}

	c.JSON(http.StatusOK, result)
}

func (h *ReplayHandler) validateReplayRequest(req apitypes.ReplayBatchRequest) error {
	if req.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive")
	}
	if req.Iterations > h.config.MaxSimulations {
		return fmt.Errorf("iterations exceed limit of %d", h.config.MaxSimulations)
	}
	if req.Home.Name == "" || req.Away.Name == "" {
		return fmt.Errorf("both home and away team names are required")
	}
	return nil
}

func (h *ReplayHandler) forwardProgressToWebSocket(batchID uuid.UUID, total int, progressChan <-chan replay.Progress) {
	for p := range progressChan {
		h.wsHub.BroadcastToBatch(batchID, apitypes.ReplayProgress{
			BatchID:   batchID,
			Completed: p.Completed,
			Aborted:   p.Aborted,
			Total:     total,
			Done:      p.Completed+p.Aborted >= total,
		})
	}
}

func parseDivision(s string) core.Division {
	switch s {
	case "fcs":
		return core.DivisionFCS
	case "other":
		return core.DivisionOther
	default:
		return core.DivisionFBS
	}
}

// hashReplayRequest derives a deterministic cache key from the request
// body so repeating the same matchup+iteration request can be served
// from cache instead of re-running the batch.
func hashReplayRequest(req apitypes.ReplayBatchRequest) string {
	data, _ := json.Marshal(req)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
