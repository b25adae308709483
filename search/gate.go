package search

import "context"

// FlagRetrieval is the feature flag gating the whole retrieval subsystem.
const FlagRetrieval = "knowledge_retrieval"

// GateContext identifies the requester for percentage rollouts.
type GateContext struct {
	UserId    string
	SessionId string
}

// Gate is the feature-flag collaborator. An error from the underlying
// flag system and a false result are treated identically: disabled.
type Gate interface {
	IsEnabled(ctx context.Context, flag string, gctx GateContext) bool
}

// StaticGate is a Gate with a fixed answer for every flag.
// Useful for tests and CLI tools that bypass rollout logic.
type StaticGate bool

var _ Gate = StaticGate(true)

func (g StaticGate) IsEnabled(context.Context, string, GateContext) bool {
	return bool(g)
}
