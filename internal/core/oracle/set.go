package oracle

// NewDefaultSet builds a full oracle Set from the built-in fallback
// models, sufficient to run end-to-end replays without a trained artifact
// directory configured. Production deployments load artifacts from disk
// instead (see internal/config's OracleArtifactDir and
// LoadRandomForestClassifier); a Set is otherwise immutable and safe to
// share read-only across every replay in a batch, per spec §5.
func NewDefaultSet() *Set {
	return &Set{
		Kickoff:    NewDefaultKickoffOracle(),
		TryAttempt: NewDefaultTryAttemptOracle(),
		Timeout:    NewDefaultTimeoutOracle(),
		Penalty:    NewDefaultPenaltyOracle(),
		Decision:   NewDefaultDecisionOracle(),
		Run:        NewDefaultRunOracle(),
		PassSack:   NewDefaultPassSackOracle(),
		FieldGoal:  NewDefaultFieldGoalOracle(),
		Punt:       NewDefaultPuntOracle(),
	}
}
