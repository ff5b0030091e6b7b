package oracleload

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/lneuendorf/cfbsim/internal/core/oracle"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log.WithField("test", true)
}

func TestReload_NoArtifactDirIsNoop(t *testing.T) {
	initial := oracle.NewDefaultSet()
	r := NewReloader("", initial, testLogger())

	require.NoError(t, r.Reload())
	require.Same(t, initial, r.Current())
}

func TestReload_MissingArtifactDirIsNoop(t *testing.T) {
	initial := oracle.NewDefaultSet()
	r := NewReloader(t.TempDir()+"/does-not-exist", initial, testLogger())

	require.NoError(t, r.Reload())
	require.Same(t, initial, r.Current())
}

func TestReload_EmptyArtifactDirKeepsFallbackClassifiers(t *testing.T) {
	initial := oracle.NewDefaultSet()
	r := NewReloader(t.TempDir(), initial, testLogger())

	require.NoError(t, r.Reload())
	require.NotNil(t, r.Current())
	require.NotSame(t, initial, r.Current(), "Reload replaces the stored set even when no files were found, so Current always returns the latest atomic snapshot")
}

func TestCurrent_ReturnsInitialSetBeforeAnyReload(t *testing.T) {
	initial := oracle.NewDefaultSet()
	r := NewReloader(t.TempDir(), initial, testLogger())

	require.Same(t, initial, r.Current())
}
