package outputs

// contractDocs holds the JSON Schema source for each output kind. Contracts
// deliberately omit additionalProperties so richer backends can attach extra
// fields without being rejected. Count caps are applied by normalization, not
// by the schema, so over-long lists are truncated rather than refused.
var contractDocs = map[Kind]string{
	KindSummary: `{
		"type": "object",
		"required": ["kind", "text"],
		"properties": {
			"kind": {"const": "summary"},
			"text": {"type": "string", "minLength": 1, "maxLength": 8000}
		}
	}`,
	KindDraft: `{
		"type": "object",
		"required": ["kind", "text"],
		"properties": {
			"kind": {"const": "draft"},
			"text": {"type": "string", "minLength": 1, "maxLength": 8000}
		}
	}`,
	KindReply: `{
		"type": "object",
		"required": ["kind", "text"],
		"properties": {
			"kind": {"const": "reply"},
			"text": {"type": "string", "minLength": 1, "maxLength": 8000}
		}
	}`,
	KindTasks: `{
		"type": "object",
		"required": ["kind", "items"],
		"properties": {
			"kind": {"const": "tasks"},
			"items": {
				"type": "array",
				"minItems": 1,
				"items": {"type": "string", "maxLength": 8000}
			}
		}
	}`,
	KindTags: `{
		"type": "object",
		"required": ["kind", "labels"],
		"properties": {
			"kind": {"const": "tags"},
			"labels": {
				"type": "array",
				"minItems": 1,
				"items": {"type": "string", "maxLength": 200}
			}
		}
	}`,
	KindRiskFlags: `{
		"type": "object",
		"required": ["kind", "flags"],
		"properties": {
			"kind": {"const": "riskFlags"},
			"flags": {
				"type": "array",
				"minItems": 1,
				"items": {"type": "string", "maxLength": 500}
			}
		}
	}`,
	KindExtraction: `{
		"type": "object",
		"required": ["kind", "fields"],
		"properties": {
			"kind": {"const": "extraction"},
			"fields": {
				"type": "object",
				"minProperties": 1,
				"additionalProperties": {"type": "string", "maxLength": 2000}
			}
		}
	}`,
	KindClassification: `{
		"type": "object",
		"required": ["kind", "label"],
		"properties": {
			"kind": {"const": "classification"},
			"label": {"type": "string", "minLength": 1, "maxLength": 200},
			"confidence": {"type": "number", "minimum": 0, "maximum": 1}
		}
	}`,
	KindPlan: `{
		"type": "object",
		"required": ["kind", "steps"],
		"properties": {
			"kind": {"const": "plan"},
			"title": {"type": "string", "maxLength": 500},
			"steps": {
				"type": "array",
				"minItems": 1,
				"items": {"type": "string", "maxLength": 2000}
			}
		}
	}`,
	KindNotification: `{
		"type": "object",
		"required": ["kind", "title"],
		"properties": {
			"kind": {"const": "notification"},
			"title": {"type": "string", "minLength": 1, "maxLength": 500},
			"body": {"type": "string", "maxLength": 4000},
			"level": {"type": "string", "maxLength": 50}
		}
	}`,
}
