// Package apitypes holds the request/response shapes shared between the
// HTTP handlers, the websocket progress hub, and the batch-replay driver.
package apitypes

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ServiceResponse represents a standard response envelope from the server.
type ServiceResponse struct {
	StatusCode int               `json:"status_code"`
	Body       interface{}       `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// HealthStatus represents the health status of the server.
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// CacheProvider defines the interface for caching oracle artifacts and
// memoized batch results.
type CacheProvider interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) bool
}

// TeamInput is the pregame description of one side of a matchup, as
// accepted by POST /api/v1/replays.
type TeamInput struct {
	Name            string  `json:"name"`
	EloRating       float64 `json:"elo_rating"`
	Division        string  `json:"division"` // "fbs", "fcs", "other"
	IsPowerFive     bool    `json:"is_power_five"`
	Timeouts        int     `json:"timeouts,omitempty"`
}

// ReplayBatchRequest is the body of POST /api/v1/replays: a matchup plus
// the number of independent replays to run.
type ReplayBatchRequest struct {
	Home        TeamInput `json:"home"`
	Away        TeamInput `json:"away"`
	NeutralSite bool      `json:"neutral_site"`
	Iterations  int       `json:"iterations"`
}

// ReplayBatchResult is the aggregate outcome of a completed batch: win
// probability from the home team's perspective, tie probability, and the
// fraction of replays that aborted with a SimError rather than completing.
type ReplayBatchResult struct {
	ID           uuid.UUID `json:"id"`
	PWin         float64   `json:"p_win"`
	PTie         float64   `json:"p_tie"`
	PLoss        float64   `json:"p_loss"`
	Completed    int       `json:"completed"`
	Aborted      int       `json:"aborted"`
	Requested    int       `json:"requested"`
	AbortRate    float64   `json:"abort_rate"`
	ElapsedMs    int64     `json:"elapsed_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReplayProgress is streamed over /ws/replays/:id as a batch runs.
type ReplayProgress struct {
	BatchID   uuid.UUID `json:"batch_id"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	Aborted   int       `json:"aborted"`
	Done      bool      `json:"done"`
}

// ErrorResponse represents a standard error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse is a generic success envelope for endpoints with no
// richer response shape.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
