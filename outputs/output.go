// Package outputs defines the structured results an action run may produce
// and the validation boundary that guards them. Every raw backend result
// passes through Validate before UI code is allowed to see it; nothing else
// constructs Output values.
package outputs

type (
	// Kind discriminates the output variants. Unknown kinds are rejected at
	// the boundary (see ParseKind), never deep in the call chain.
	Kind string

	// Output is the closed sum of action output variants. Each variant
	// reports its own Kind; the unexported method keeps the set closed so a
	// new variant cannot ship without a matching validator contract.
	Output interface {
		Kind() Kind
		output()
	}

	// Summary is a prose condensation of the target.
	Summary struct {
		Text string `json:"text"`
	}

	// Draft is a proposed outbound message body.
	Draft struct {
		Text string `json:"text"`
	}

	// Reply is a suggested direct response in an existing conversation.
	Reply struct {
		Text string `json:"text"`
	}

	// Tasks is an ordered list of follow-up items.
	Tasks struct {
		Items []string `json:"items"`
	}

	// Tags is a set of short labels describing the target.
	Tags struct {
		Labels []string `json:"labels"`
	}

	// RiskFlags lists conditions that warrant human attention.
	RiskFlags struct {
		Flags []string `json:"flags"`
	}

	// ExtractedField is one name/value pair pulled from the target.
	ExtractedField struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}

	// Extraction is an ordered field mapping. Order follows the backend's
	// JSON object key order so truncation keeps the leading entries.
	Extraction struct {
		Fields []ExtractedField `json:"fields"`
	}

	// Classification assigns a label with an optional confidence in [0,1].
	Classification struct {
		Label      string   `json:"label"`
		Confidence *float64 `json:"confidence,omitempty"`
	}

	// Plan is an ordered sequence of steps with an optional title.
	Plan struct {
		Title string   `json:"title,omitempty"`
		Steps []string `json:"steps"`
	}

	// Notification is a message destined for a team channel or toast.
	Notification struct {
		Title string `json:"title"`
		Body  string `json:"body,omitempty"`
		Level string `json:"level,omitempty"`
	}
)

const (
	KindSummary        Kind = "summary"
	KindDraft          Kind = "draft"
	KindTasks          Kind = "tasks"
	KindPlan           Kind = "plan"
	KindTags           Kind = "tags"
	KindExtraction     Kind = "extraction"
	KindClassification Kind = "classification"
	KindReply          Kind = "reply"
	KindRiskFlags      Kind = "riskFlags"
	KindNotification   Kind = "notification"
)

// kinds is the closed enumeration backing ParseKind.
var kinds = map[Kind]struct{}{
	KindSummary:        {},
	KindDraft:          {},
	KindTasks:          {},
	KindPlan:           {},
	KindTags:           {},
	KindExtraction:     {},
	KindClassification: {},
	KindReply:          {},
	KindRiskFlags:      {},
	KindNotification:   {},
}

// ParseKind validates a wire-level kind string against the closed
// enumeration. The boolean reports whether the kind is known.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := kinds[k]
	return k, ok
}

func (Summary) Kind() Kind        { return KindSummary }
func (Draft) Kind() Kind          { return KindDraft }
func (Reply) Kind() Kind          { return KindReply }
func (Tasks) Kind() Kind          { return KindTasks }
func (Tags) Kind() Kind           { return KindTags }
func (RiskFlags) Kind() Kind      { return KindRiskFlags }
func (Extraction) Kind() Kind     { return KindExtraction }
func (Classification) Kind() Kind { return KindClassification }
func (Plan) Kind() Kind           { return KindPlan }
func (Notification) Kind() Kind   { return KindNotification }

func (Summary) output()        {}
func (Draft) output()          {}
func (Reply) output()          {}
func (Tasks) output()          {}
func (Tags) output()           {}
func (RiskFlags) output()      {}
func (Extraction) output()     {}
func (Classification) output() {}
func (Plan) output()           {}
func (Notification) output()   {}
