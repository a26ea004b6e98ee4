package sse

type (
	// Step describes one stage of backend processing surfaced to the UI.
	Step struct {
		ID     string `json:"id"`
		Label  string `json:"label,omitempty"`
		Status string `json:"status,omitempty"`
	}

	// UIMessage is an auxiliary message the backend wants rendered alongside
	// the assistant content.
	UIMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	// SuggestedAction is a follow-up action the backend proposes to the user.
	SuggestedAction struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	}

	// Start announces the stream and the planned processing steps.
	Start struct {
		Steps []Step
	}

	// Status reports a coarse processing stage ("retrieving", "drafting", ...).
	Status struct {
		Stage string
	}

	// StepUpdate reports a transition for one announced step.
	StepUpdate struct {
		StepID string
		Status string
	}

	// Delta carries an incremental text fragment.
	Delta struct {
		Text string
	}

	// Chunk carries the cumulative text so far, for backends that resend the
	// whole partial answer on each tick.
	Chunk struct {
		CumulativeText string
	}

	// Final is the terminal event. "final" records win over "end" records
	// because they carry the richer metadata; either way exactly one Final is
	// delivered per stream.
	Final struct {
		Content    string
		Steps      []Step
		UIMessages []UIMessage
		Actions    []SuggestedAction
	}

	// ErrorEvent reports a backend-side failure delivered on the stream.
	ErrorEvent struct {
		Message string
	}
)
