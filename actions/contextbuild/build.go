package contextbuild

import "strings"

// Builder shapes one domain's action context. Builders are pure: no I/O, and
// missing optional fields never fail the build. A target with no usable
// identifier still produces a context (with an empty target id); surfacing
// that as an error is the Action Runner's job, not the builder's.
type Builder func(ref TargetRef, moduleCtx, uiCtx map[string]any) Context

// builders is the total mapping from domain to builder.
var builders = map[Domain]Builder{
	DomainInbox:     buildInbox,
	DomainCustomers: buildCustomers,
	DomainDocuments: buildDocuments,
	DomainStorage:   buildStorage,
	DomainGrowth:    buildGrowth,
	DomainCRM:       buildCRM,
	DomainReviews:   buildReviews,
}

// ForDomain returns the builder for the domain. The boolean reports whether
// the domain is known.
func ForDomain(d Domain) (Builder, bool) {
	b, ok := builders[d]
	return b, ok
}

// envelope assembles the canonical context shape shared by every domain.
func envelope(ref TargetRef, id string, moduleCtx, uiCtx map[string]any) Context {
	targetType := ref.Subtype
	if targetType == "" {
		targetType = string(ref.Domain)
	}
	if moduleCtx == nil {
		moduleCtx = map[string]any{}
	}
	if uiCtx == nil {
		uiCtx = map[string]any{}
	}
	return Context{
		"module": string(ref.Domain),
		"target": map[string]any{
			"id":    id,
			"type":  targetType,
			"title": Redact(ref.Title),
		},
		"moduleContext": moduleCtx,
		"uiContext":     uiCtx,
	}
}

// pick returns the first non-empty string value of the named keys.
func pick(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func fallbackID(moduleCtx map[string]any, ref TargetRef, keys ...string) string {
	if id := pick(moduleCtx, keys...); id != "" {
		return id
	}
	return ref.TargetID
}

func buildInbox(ref TargetRef, moduleCtx, uiCtx map[string]any) Context {
	id := fallbackID(moduleCtx, ref, "threadId", "messageId")
	ctx := envelope(ref, id, moduleCtx, uiCtx)
	ctx["channel"] = pick(moduleCtx, "channel")
	if ctx["channel"] == "" {
		ctx["channel"] = ref.Channel
	}
	ctx["subject"] = Redact(pick(moduleCtx, "subject"))
	ctx["snippet"] = Redact(pick(moduleCtx, "snippet"))
	return ctx
}

func buildCustomers(ref TargetRef, moduleCtx, uiCtx map[string]any) Context {
	id := fallbackID(moduleCtx, ref, "customerId")
	ctx := envelope(ref, id, moduleCtx, uiCtx)
	ctx["name"] = Redact(pick(moduleCtx, "name"))
	ctx["email"] = Redact(pick(moduleCtx, "email"))
	ctx["segment"] = pick(moduleCtx, "segment")
	return ctx
}

func buildDocuments(ref TargetRef, moduleCtx, uiCtx map[string]any) Context {
	id := fallbackID(moduleCtx, ref, "documentId")
	ctx := envelope(ref, id, moduleCtx, uiCtx)
	ctx["title"] = Redact(pick(moduleCtx, "title"))
	ctx["folder"] = pick(moduleCtx, "folder")
	ctx["mimeType"] = pick(moduleCtx, "mimeType")
	return ctx
}

func buildStorage(ref TargetRef, moduleCtx, uiCtx map[string]any) Context {
	id := fallbackID(moduleCtx, ref, "fileId")
	ctx := envelope(ref, id, moduleCtx, uiCtx)
	ctx["path"] = pick(moduleCtx, "path")
	if size, ok := moduleCtx["sizeBytes"].(float64); ok {
		ctx["sizeBytes"] = size
	}
	return ctx
}

func buildGrowth(ref TargetRef, moduleCtx, uiCtx map[string]any) Context {
	id := fallbackID(moduleCtx, ref, "campaignId")
	ctx := envelope(ref, id, moduleCtx, uiCtx)
	ctx["audience"] = pick(moduleCtx, "audience")
	ctx["channel"] = pick(moduleCtx, "channel")
	return ctx
}

func buildCRM(ref TargetRef, moduleCtx, uiCtx map[string]any) Context {
	id := fallbackID(moduleCtx, ref, "dealId", "contactId")
	ctx := envelope(ref, id, moduleCtx, uiCtx)
	ctx["stage"] = pick(moduleCtx, "stage")
	if value, ok := moduleCtx["value"].(float64); ok {
		ctx["value"] = value
	}
	return ctx
}

func buildReviews(ref TargetRef, moduleCtx, uiCtx map[string]any) Context {
	id := fallbackID(moduleCtx, ref, "reviewId")
	ctx := envelope(ref, id, moduleCtx, uiCtx)
	ctx["source"] = pick(moduleCtx, "source")
	ctx["excerpt"] = Redact(pick(moduleCtx, "excerpt"))
	if rating, ok := moduleCtx["rating"].(float64); ok {
		ctx["rating"] = rating
	}
	return ctx
}
