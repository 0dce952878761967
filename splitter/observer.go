package splitter

import "github.com/tailored-agentic-units/splitter/observability"

// Splitter event types emitted during reply processing.
const (
	EventTakeOver       observability.EventType = "splitter.takeover"
	EventHistorySaved   observability.EventType = "splitter.history.saved"
	EventHistorySkipped observability.EventType = "splitter.history.skipped"
	EventDeliver        observability.EventType = "splitter.deliver"
	EventDeliverFailed  observability.EventType = "splitter.deliver.failed"
	EventComplete       observability.EventType = "splitter.complete"
)
