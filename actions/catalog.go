// Package actions drives assistant action execution end to end: a static
// catalogue of action definitions, the runner state machine that submits and
// polls a run, the needs-input interrupt result, and best-effort completion
// notifications with an append-only audit trail.
package actions

import (
	"github.com/conciergehq/concierge-go/actions/contextbuild"
	"github.com/conciergehq/concierge-go/outputs"
)

type (
	// ID is an action identifier from the closed catalogue. Unknown ids are
	// rejected before any network call.
	ID string

	// Placement hints where the UI surfaces the action.
	Placement string

	// Definition is a static catalogue entry. The catalogue is built once at
	// process start and never mutated at runtime.
	Definition struct {
		// ID is the catalogue key.
		ID ID
		// Domains lists the target domains the action supports.
		Domains []contextbuild.Domain
		// Output is the kind the run result must validate as.
		Output outputs.Kind
		// RequiresApproval marks actions that must be explicitly confirmed
		// before submission.
		RequiresApproval bool
		// Placement is the UI placement hint.
		Placement Placement
	}
)

const (
	PlacementToolbar     Placement = "toolbar"
	PlacementContextMenu Placement = "context_menu"
	PlacementBulkBar     Placement = "bulk_bar"
)

const (
	SummarizeThread   ID = "summarize_thread"
	DraftReply        ID = "draft_reply"
	ExtractFields     ID = "extract_fields"
	ClassifyMessage   ID = "classify_message"
	PlanFollowUps     ID = "plan_follow_ups"
	TagCustomer       ID = "tag_customer"
	FlagRisks         ID = "flag_risks"
	NotifyTeam        ID = "notify_team"
	SummarizeDocument ID = "summarize_document"
	DraftCampaign     ID = "draft_campaign"
)

// catalog is the total mapping from action id to definition.
var catalog = map[ID]Definition{
	SummarizeThread: {
		ID:        SummarizeThread,
		Domains:   []contextbuild.Domain{contextbuild.DomainInbox, contextbuild.DomainCRM},
		Output:    outputs.KindSummary,
		Placement: PlacementToolbar,
	},
	DraftReply: {
		ID:               DraftReply,
		Domains:          []contextbuild.Domain{contextbuild.DomainInbox, contextbuild.DomainReviews},
		Output:           outputs.KindReply,
		RequiresApproval: true,
		Placement:        PlacementToolbar,
	},
	ExtractFields: {
		ID:        ExtractFields,
		Domains:   []contextbuild.Domain{contextbuild.DomainInbox, contextbuild.DomainDocuments, contextbuild.DomainStorage},
		Output:    outputs.KindExtraction,
		Placement: PlacementContextMenu,
	},
	ClassifyMessage: {
		ID:        ClassifyMessage,
		Domains:   []contextbuild.Domain{contextbuild.DomainInbox, contextbuild.DomainReviews},
		Output:    outputs.KindClassification,
		Placement: PlacementContextMenu,
	},
	PlanFollowUps: {
		ID:        PlanFollowUps,
		Domains:   []contextbuild.Domain{contextbuild.DomainCRM, contextbuild.DomainCustomers},
		Output:    outputs.KindPlan,
		Placement: PlacementToolbar,
	},
	TagCustomer: {
		ID:        TagCustomer,
		Domains:   []contextbuild.Domain{contextbuild.DomainCustomers, contextbuild.DomainCRM},
		Output:    outputs.KindTags,
		Placement: PlacementBulkBar,
	},
	FlagRisks: {
		ID:        FlagRisks,
		Domains:   []contextbuild.Domain{contextbuild.DomainInbox, contextbuild.DomainCRM, contextbuild.DomainReviews},
		Output:    outputs.KindRiskFlags,
		Placement: PlacementContextMenu,
	},
	NotifyTeam: {
		ID:               NotifyTeam,
		Domains:          []contextbuild.Domain{contextbuild.DomainInbox, contextbuild.DomainCustomers, contextbuild.DomainReviews},
		Output:           outputs.KindNotification,
		RequiresApproval: true,
		Placement:        PlacementContextMenu,
	},
	SummarizeDocument: {
		ID:        SummarizeDocument,
		Domains:   []contextbuild.Domain{contextbuild.DomainDocuments, contextbuild.DomainStorage},
		Output:    outputs.KindSummary,
		Placement: PlacementToolbar,
	},
	DraftCampaign: {
		ID:               DraftCampaign,
		Domains:          []contextbuild.Domain{contextbuild.DomainGrowth},
		Output:           outputs.KindDraft,
		RequiresApproval: true,
		Placement:        PlacementToolbar,
	},
}

// Lookup returns the definition for an action id. The boolean reports
// whether the id is in the catalogue.
func Lookup(id ID) (Definition, bool) {
	def, ok := catalog[id]
	return def, ok
}

// Definitions returns a copy of the catalogue for UI menus.
func Definitions() []Definition {
	defs := make([]Definition, 0, len(catalog))
	for _, def := range catalog {
		defs = append(defs, def)
	}
	return defs
}

// Supports reports whether the definition accepts targets from the domain.
func (d Definition) Supports(domain contextbuild.Domain) bool {
	for _, candidate := range d.Domains {
		if candidate == domain {
			return true
		}
	}
	return false
}
