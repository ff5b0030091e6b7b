// Package store persists completed replay batches for later retrieval by
// GET /api/v1/replays/:id. Every SPEC_FULL.md game/oracle computation
// happens entirely in memory in internal/core and internal/replay; this
// package only records the aggregate result once a batch finishes.
package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/lneuendorf/cfbsim/internal/core"
	"github.com/lneuendorf/cfbsim/pkg/database"
)

// BatchRun is the persisted record of one completed replay batch.
type BatchRun struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	HomeTeam    string         `gorm:"not null" json:"home_team"`
	AwayTeam    string         `gorm:"not null" json:"away_team"`
	HomeElo     float64        `json:"home_elo"`
	AwayElo     float64        `json:"away_elo"`
	NeutralSite bool           `json:"neutral_site"`
	Requested   int            `gorm:"not null" json:"requested"`
	Completed   int            `json:"completed"`
	Aborted     int            `json:"aborted"`
	PWin        float64        `json:"p_win"`
	PTie        float64        `json:"p_tie"`
	PLoss       float64        `json:"p_loss"`
	ElapsedMs   int64          `json:"elapsed_ms"`
	Status      string         `gorm:"size:20;default:pending" json:"status"` // pending, running, done, failed
	FailureNote string         `json:"failure_note,omitempty"`
	// AbortDetails holds the per-Kind breakdown of why replays aborted
	// (e.g. {"CONTRACT_VIOLATION": 2, "STATE_INVARIANT_BROKEN": 1}), stored
	// as a raw JSON blob rather than a normalized table since it is
	// write-once diagnostic detail, never queried or filtered on.
	AbortDetails datatypes.JSON `json:"abort_details,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (BatchRun) TableName() string { return "batch_runs" }

// CreateBatchRun inserts the row, with status "running", for a batch about
// to start. The id
// is generated here rather than left to a database-side default so the same
// call works unchanged against either the production Postgres store or the
// in-memory SQLite database internal/store's own tests run against.
func CreateBatchRun(db *database.DB, run *BatchRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.Status = "running"
	return db.Create(run).Error
}

// CompleteBatchRun records a successful batch's aggregate result.
// abortCounts is marshaled to JSON verbatim; a nil or empty map stores as
// "null"/"{}" rather than failing the update.
func CompleteBatchRun(db *database.DB, id uuid.UUID, completed, aborted int, pWin, pTie, pLoss float64, elapsedMs int64, abortCounts map[core.Kind]int) error {
	detailsJSON, err := json.Marshal(abortCounts)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"completed":     completed,
		"aborted":       aborted,
		"p_win":         pWin,
		"p_tie":         pTie,
		"p_loss":        pLoss,
		"elapsed_ms":    elapsedMs,
		"status":        "done",
		"abort_details": datatypes.JSON(detailsJSON),
	}
	return db.Model(&BatchRun{}).Where("id = ?", id).Updates(updates).Error
}

// FailBatchRun records a batch that aborted before producing any result
// (e.g. OracleUnavailable at startup).
func FailBatchRun(db *database.DB, id uuid.UUID, note string) error {
	updates := map[string]interface{}{
		"status":       "failed",
		"failure_note": note,
	}
	return db.Model(&BatchRun{}).Where("id = ?", id).Updates(updates).Error
}

// GetBatchRunByID fetches a batch run by its id, for GET /api/v1/replays/:id.
func GetBatchRunByID(db *database.DB, id uuid.UUID) (*BatchRun, error) {
	var run BatchRun
	err := db.Where("id = ?", id).First(&run).Error
	return &run, err
}
