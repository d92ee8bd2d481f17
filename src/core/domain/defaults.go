package domain

// MinScore and MaxScore bound a single dish rating.
const (
	MinScore = 1
	MaxScore = 10
)

// DefaultFinalizeQuorum is the number of distinct finalization votes that
// force-closes a round regardless of voting completeness.
const DefaultFinalizeQuorum = 5
