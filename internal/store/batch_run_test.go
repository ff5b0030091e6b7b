package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lneuendorf/cfbsim/internal/core"
	"github.com/lneuendorf/cfbsim/pkg/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&BatchRun{}))
	return db
}

func TestCreateBatchRun_DefaultsToRunning(t *testing.T) {
	db := newTestDB(t)
	run := &BatchRun{
		HomeTeam:  "Ohio State",
		AwayTeam:  "Michigan",
		Requested: 1000,
	}
	require.NoError(t, CreateBatchRun(db, run))
	require.NotEqual(t, uuid.Nil, run.ID)

	got, err := GetBatchRunByID(db, run.ID)
	require.NoError(t, err)
	require.Equal(t, "running", got.Status)
	require.Equal(t, "Ohio State", got.HomeTeam)
	require.Equal(t, 1000, got.Requested)
}

func TestCompleteBatchRun_RecordsAggregateResult(t *testing.T) {
	db := newTestDB(t)
	run := &BatchRun{HomeTeam: "Georgia", AwayTeam: "Alabama", Requested: 500}
	require.NoError(t, CreateBatchRun(db, run))

	abortCounts := map[core.Kind]int{core.KindStateInvariantBroken: 2}
	require.NoError(t, CompleteBatchRun(db, run.ID, 498, 2, 0.62, 0.03, 0.35, 4321, abortCounts))

	got, err := GetBatchRunByID(db, run.ID)
	require.NoError(t, err)
	require.Equal(t, "done", got.Status)
	require.Equal(t, 498, got.Completed)
	require.Equal(t, 2, got.Aborted)
	require.InDelta(t, 0.62, got.PWin, 1e-9)
	require.InDelta(t, 0.03, got.PTie, 1e-9)
	require.InDelta(t, 0.35, got.PLoss, 1e-9)
	require.Equal(t, int64(4321), got.ElapsedMs)
	require.JSONEq(t, `{"STATE_INVARIANT_BROKEN":2}`, string(got.AbortDetails))
}

func TestFailBatchRun_RecordsFailureNote(t *testing.T) {
	db := newTestDB(t)
	run := &BatchRun{HomeTeam: "Oregon", AwayTeam: "Washington", Requested: 100}
	require.NoError(t, CreateBatchRun(db, run))

	require.NoError(t, FailBatchRun(db, run.ID, "oracle artifact directory unavailable"))

	got, err := GetBatchRunByID(db, run.ID)
	require.NoError(t, err)
	require.Equal(t, "failed", got.Status)
	require.Equal(t, "oracle artifact directory unavailable", got.FailureNote)
}

func TestGetBatchRunByID_UnknownID(t *testing.T) {
	db := newTestDB(t)
	_, err := GetBatchRunByID(db, uuid.New())
	require.Error(t, err)
}
