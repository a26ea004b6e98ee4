// Package contextbuild shapes "run this action against this target" requests
// into the context payload the backend expects. One pure builder per product
// domain; no I/O, no errors for missing optional fields. Free-text fields are
// redacted before the payload leaves the process.
package contextbuild

type (
	// Domain identifies which product module a target belongs to.
	Domain string

	// TargetRef identifies what an action acts on. Created by UI code and
	// passed by value; never mutated after creation.
	TargetRef struct {
		Domain   Domain
		TargetID string
		Title    string
		Subtype  string
		Channel  string
	}

	// Context is the domain-specific payload submitted with an action run.
	// Builders always include the canonical envelope keys (module, target,
	// moduleContext, uiContext) so the backend can route regardless of
	// domain; domain builders add a bounded set of convenience fields on top.
	Context map[string]any
)

const (
	DomainInbox     Domain = "inbox"
	DomainCustomers Domain = "customers"
	DomainDocuments Domain = "documents"
	DomainStorage   Domain = "storage"
	DomainGrowth    Domain = "growth"
	DomainCRM       Domain = "crm"
	DomainReviews   Domain = "reviews"
)

// ParseDomain validates a wire-level domain string. The boolean reports
// whether the domain is known.
func ParseDomain(s string) (Domain, bool) {
	d := Domain(s)
	switch d {
	case DomainInbox, DomainCustomers, DomainDocuments, DomainStorage, DomainGrowth, DomainCRM, DomainReviews:
		return d, true
	}
	return d, false
}

// TargetID returns the routed identifier from the canonical envelope, empty
// when the target was unroutable. The Action Runner uses this to convert "no
// usable identifier" into a caller-visible error; builders themselves never
// fail.
func (c Context) TargetID() string {
	target, _ := c["target"].(map[string]any)
	id, _ := target["id"].(string)
	return id
}
