package orchestrator

// Stage names one step of the per-request state machine of spec §4.8:
// Idle -> Fetching -> Harmonizing -> Composing -> Forecasting ->
// Publishing -> Journaling -> Done. Any stage before Publishing may
// fall through to Degraded or Failed; Publishing and Journaling
// failures fall back to Done with a logged warning rather than
// failing the request.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageFetching    Stage = "fetching"
	StageHarmonizing Stage = "harmonizing"
	StageComposing   Stage = "composing"
	StageForecasting Stage = "forecasting"
	StagePublishing  Stage = "publishing"
	StageJournaling  Stage = "journaling"
	StageDone        Stage = "done"
	StageDegraded    Stage = "degraded"
	StageFailed      Stage = "failed"
)
