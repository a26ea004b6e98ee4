package outputs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Normalization bounds. Lists and mappings are capped, not rejected, when the
// backend returns more entries than the UI can use.
const (
	MaxTextLen          = 8000
	MaxTasks            = 20
	MaxTags             = 12
	MaxRiskFlags        = 12
	MaxExtractionFields = 12
	MaxPlanSteps        = 20
)

type (
	// ValidationError reports that a raw backend result does not satisfy the
	// structural contract of its output kind. It is a hard failure of the
	// run; malformed output is never silently coerced.
	ValidationError struct {
		// OutputKind is the contract the value was checked against.
		OutputKind Kind
		// Detail describes the violation for logs.
		Detail string
		// Cause stores the underlying schema or decode error, if any.
		Cause error
	}
)

// ErrShapeViolation matches all ValidationError instances via errors.Is.
var ErrShapeViolation = errors.New("output shape violation")

// Error returns a stable, human-readable description of the violation.
func (e *ValidationError) Error() string {
	if e == nil {
		return ErrShapeViolation.Error()
	}
	return fmt.Sprintf("output shape violation (%s): %s", e.OutputKind, e.Detail)
}

// Unwrap exposes the underlying cause.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is allows errors.Is(err, ErrShapeViolation) classification.
func (e *ValidationError) Is(target error) bool {
	return target == ErrShapeViolation
}

func shapeErr(kind Kind, detail string, cause error) error {
	return &ValidationError{OutputKind: kind, Detail: detail, Cause: cause}
}

// contracts holds the compiled structural contract per output kind. Populated
// once at package init; read-only afterwards.
var contracts = map[Kind]*jsonschema.Schema{}

func init() {
	for kind, doc := range contractDocs {
		contracts[kind] = mustCompile(string(kind), doc)
	}
}

func mustCompile(name, doc string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(doc), &schemaDoc); err != nil {
		panic(fmt.Sprintf("output contract %s: %v", name, err))
	}
	c := jsonschema.NewCompiler()
	url := name + ".schema.json"
	if err := c.AddResource(url, schemaDoc); err != nil {
		panic(fmt.Sprintf("output contract %s: %v", name, err))
	}
	schema, err := c.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("output contract %s: %v", name, err))
	}
	return schema
}

// Validate checks a raw backend result against the structural contract for
// the expected output kind and returns the normalized typed output.
//
// If the raw value carries no "kind" discriminant one is injected from the
// expected kind, tolerating minimal backends that omit the tag. Unknown extra
// fields on the raw value are passed through without complaint. Normalization
// (trim, empty-filter, count caps) is deterministic and order-preserving, so
// re-validating an already-normalized value is a no-op.
func Validate(kind Kind, raw json.RawMessage) (Output, error) {
	if _, ok := kinds[kind]; !ok {
		return nil, shapeErr(kind, "unknown output kind", nil)
	}
	var value map[string]any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, shapeErr(kind, "result is not a JSON object", err)
	}
	// A JSON null unmarshals without error but leaves the map nil.
	if value == nil {
		return nil, shapeErr(kind, "result is not a JSON object", nil)
	}
	if _, ok := value["kind"]; !ok {
		value["kind"] = string(kind)
	}
	schema := contracts[kind]
	if err := schema.Validate(any(value)); err != nil {
		return nil, shapeErr(kind, "schema validation failed", err)
	}
	out, err := decodeAndNormalize(kind, value, raw)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeAndNormalize(kind Kind, value map[string]any, raw json.RawMessage) (Output, error) {
	switch kind {
	case KindSummary:
		text, err := normalizeText(kind, value, "text")
		if err != nil {
			return nil, err
		}
		return Summary{Text: text}, nil
	case KindDraft:
		text, err := normalizeText(kind, value, "text")
		if err != nil {
			return nil, err
		}
		return Draft{Text: text}, nil
	case KindReply:
		text, err := normalizeText(kind, value, "text")
		if err != nil {
			return nil, err
		}
		return Reply{Text: text}, nil
	case KindTasks:
		items, err := normalizeList(kind, value, "items", MaxTasks)
		if err != nil {
			return nil, err
		}
		return Tasks{Items: items}, nil
	case KindTags:
		labels, err := normalizeList(kind, value, "labels", MaxTags)
		if err != nil {
			return nil, err
		}
		return Tags{Labels: labels}, nil
	case KindRiskFlags:
		flags, err := normalizeList(kind, value, "flags", MaxRiskFlags)
		if err != nil {
			return nil, err
		}
		return RiskFlags{Flags: flags}, nil
	case KindExtraction:
		return normalizeExtraction(value, raw)
	case KindClassification:
		label, err := normalizeText(kind, value, "label")
		if err != nil {
			return nil, err
		}
		out := Classification{Label: label}
		if c, ok := value["confidence"].(float64); ok {
			out.Confidence = &c
		}
		return out, nil
	case KindPlan:
		steps, err := normalizeList(kind, value, "steps", MaxPlanSteps)
		if err != nil {
			return nil, err
		}
		title, _ := value["title"].(string)
		return Plan{Title: strings.TrimSpace(title), Steps: steps}, nil
	case KindNotification:
		title, err := normalizeText(kind, value, "title")
		if err != nil {
			return nil, err
		}
		body, _ := value["body"].(string)
		level, _ := value["level"].(string)
		return Notification{Title: title, Body: strings.TrimSpace(body), Level: strings.TrimSpace(level)}, nil
	}
	return nil, shapeErr(kind, "unknown output kind", nil)
}

func normalizeText(kind Kind, value map[string]any, field string) (string, error) {
	s, _ := value[field].(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return "", shapeErr(kind, field+" is empty after trimming", nil)
	}
	return s, nil
}

func normalizeList(kind Kind, value map[string]any, field string, maxLen int) ([]string, error) {
	rawItems, _ := value[field].([]any)
	items := make([]string, 0, len(rawItems))
	for _, it := range rawItems {
		s, _ := it.(string)
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		items = append(items, s)
		if len(items) == maxLen {
			break
		}
	}
	if len(items) == 0 {
		return nil, shapeErr(kind, field+" is empty after normalization", nil)
	}
	return items, nil
}

func normalizeExtraction(value map[string]any, raw json.RawMessage) (Output, error) {
	fields, _ := value["fields"].(map[string]any)
	// json.Unmarshal randomizes map iteration; the cap must keep the leading
	// keys as the backend wrote them, so order is recovered from the raw bytes.
	order, err := objectKeyOrder(raw, "fields")
	if err != nil {
		return nil, shapeErr(KindExtraction, "fields is not a JSON object", err)
	}
	out := Extraction{Fields: make([]ExtractedField, 0, len(order))}
	for _, name := range order {
		v, ok := fields[name].(string)
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		v = strings.TrimSpace(v)
		if name == "" || v == "" {
			continue
		}
		out.Fields = append(out.Fields, ExtractedField{Name: name, Value: v})
		if len(out.Fields) == MaxExtractionFields {
			break
		}
	}
	if len(out.Fields) == 0 {
		return nil, shapeErr(KindExtraction, "fields is empty after normalization", nil)
	}
	return out, nil
}

// objectKeyOrder returns the keys of the named top-level object field in the
// order they appear in the raw JSON document.
func objectKeyOrder(raw json.RawMessage, field string) ([]string, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	// Enter the top-level object.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("malformed object key")
		}
		if key != field {
			if err := skipValue(dec); err != nil {
				return nil, err
			}
			continue
		}
		open, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := open.(json.Delim); !ok || d != '{' {
			return nil, errors.New(field + " is not an object")
		}
		var keys []string
		for dec.More() {
			nameTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			name, ok := nameTok.(string)
			if !ok {
				return nil, errors.New("malformed object key")
			}
			keys = append(keys, name)
			if err := skipValue(dec); err != nil {
				return nil, err
			}
		}
		return keys, nil
	}
	return nil, nil
}

// skipValue consumes one complete JSON value from the decoder.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	if d == '{' || d == '[' {
		depth := 1
		for depth > 0 {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			if d, ok := tok.(json.Delim); ok {
				switch d {
				case '{', '[':
					depth++
				case '}', ']':
					depth--
				}
			}
		}
	}
	return nil
}
