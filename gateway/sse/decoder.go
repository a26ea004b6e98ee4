// Package sse decodes the gateway's incremental chat responses. It turns a
// raw byte stream into typed protocol events delivered through caller-supplied
// callbacks, in wire order, without buffering beyond one incomplete record.
// The decoder has no network knowledge; the gateway client feeds it response
// bodies.
package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

type (
	// Handlers receives decoded events. Nil callbacks are skipped. OnFinal is
	// the single terminal data callback; the decoder guarantees it fires at
	// most once per stream regardless of how many terminal records the wire
	// carries. OnAbort fires exactly once if the context is canceled
	// mid-stream, and never together with OnFinal for the same cause.
	Handlers struct {
		OnStart      func(Start)
		OnStatus     func(Status)
		OnStepUpdate func(StepUpdate)
		OnDelta      func(Delta)
		OnChunk      func(Chunk)
		OnFinal      func(Final)
		OnError      func(ErrorEvent)
		OnAbort      func()
	}

	// Decoder consumes one stream. Not safe for concurrent use; create one
	// per response body.
	Decoder struct {
		handlers Handlers
		terminal terminalLatch
	}

	// terminalLatch tracks whether a terminal event has been dispatched.
	// Explicit state rather than a bare bool so the once-only invariant is
	// visible at the type level.
	terminalLatch int
)

const (
	latchOpen terminalLatch = iota
	latchClosed
)

// Wire-level event names. An absent name or the generic "message" placeholder
// defers to the "event" field embedded in the payload.
const (
	eventStart      = "start"
	eventStatus     = "status"
	eventStepUpdate = "step_update"
	eventDelta      = "delta"
	eventChunk      = "chunk"
	eventFinal      = "final"
	eventEnd        = "end"
	eventError      = "error"
	eventGeneric    = "message"
)

// New constructs a Decoder dispatching to the given handlers.
func New(h Handlers) *Decoder {
	return &Decoder{handlers: h, terminal: latchOpen}
}

// Decode reads the stream until EOF or cancellation. Records are separated by
// a blank line; "event:" lines name the event and "data:" lines accumulate the
// payload (newline-joined). A trailing unterminated record at EOF is still
// dispatched, since streams are not guaranteed to end with a separator.
//
// Cancellation stops reading and invokes OnAbort exactly once; no further
// events are dispatched even if buffered data remains. Decode returns an
// error only for transport-level read failures.
func (d *Decoder) Decode(ctx context.Context, r io.Reader) error {
	reader := bufio.NewReader(r)
	var (
		event string
		data  []string
	)
	for {
		select {
		case <-ctx.Done():
			if d.handlers.OnAbort != nil {
				d.handlers.OnAbort()
			}
			return nil
		default:
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				if ctx.Err() != nil {
					if d.handlers.OnAbort != nil {
						d.handlers.OnAbort()
					}
					return nil
				}
				// Dispatch the trailing record, if any.
				line = strings.TrimRight(line, "\r\n")
				if line != "" {
					event, data = d.consumeLine(line, event, data)
				}
				if len(data) > 0 || event != "" {
					d.dispatch(event, strings.Join(data, "\n"))
				}
				return nil
			}
			if ctx.Err() != nil {
				if d.handlers.OnAbort != nil {
					d.handlers.OnAbort()
				}
				return nil
			}
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if len(data) > 0 || event != "" {
				d.dispatch(event, strings.Join(data, "\n"))
			}
			event, data = "", nil
			continue
		}
		event, data = d.consumeLine(line, event, data)
	}
}

// consumeLine folds one wire line into the current record state.
func (d *Decoder) consumeLine(line, event string, data []string) (string, []string) {
	if strings.HasPrefix(line, ":") {
		return event, data
	}
	if after, ok := strings.CutPrefix(line, "event:"); ok {
		return strings.TrimSpace(after), data
	}
	if after, ok := strings.CutPrefix(line, "data:"); ok {
		return event, append(data, strings.TrimPrefix(after, " "))
	}
	return event, data
}

// dispatch resolves the effective event name and invokes the matching
// callback. Payload text that fails to parse as JSON is wrapped as
// {"content": raw} rather than dropped. Unknown effective events are ignored
// for forward compatibility.
func (d *Decoder) dispatch(wireEvent, payload string) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(payload), &fields); err != nil || fields == nil {
		fields = map[string]any{"content": payload}
	}
	event := wireEvent
	if event == "" || event == eventGeneric {
		if embedded, ok := fields["event"].(string); ok {
			event = embedded
		}
	}
	switch event {
	case eventStart:
		if d.handlers.OnStart != nil {
			d.handlers.OnStart(Start{Steps: stepsField(fields, "steps")})
		}
	case eventStatus:
		if d.handlers.OnStatus != nil {
			d.handlers.OnStatus(Status{Stage: stringField(fields, "stage")})
		}
	case eventStepUpdate:
		if d.handlers.OnStepUpdate != nil {
			d.handlers.OnStepUpdate(StepUpdate{
				StepID: stringField(fields, "stepId"),
				Status: stringField(fields, "status"),
			})
		}
	case eventDelta:
		if d.handlers.OnDelta != nil {
			d.handlers.OnDelta(Delta{Text: stringField(fields, "text")})
		}
	case eventChunk:
		if d.handlers.OnChunk != nil {
			d.handlers.OnChunk(Chunk{CumulativeText: stringField(fields, "cumulativeText")})
		}
	case eventFinal, eventEnd:
		if d.terminal == latchClosed {
			return
		}
		d.terminal = latchClosed
		if d.handlers.OnFinal != nil {
			d.handlers.OnFinal(Final{
				Content:    stringField(fields, "content"),
				Steps:      stepsField(fields, "steps"),
				UIMessages: uiMessagesField(fields),
				Actions:    actionsField(fields),
			})
		}
	case eventError:
		if d.handlers.OnError != nil {
			d.handlers.OnError(ErrorEvent{Message: stringField(fields, "message")})
		}
	default:
		// Unknown events are ignored so newer backends can add event types
		// without breaking older clients.
	}
}

func stringField(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}

func stepsField(fields map[string]any, name string) []Step {
	raw, _ := fields[name].([]any)
	if len(raw) == 0 {
		return nil
	}
	steps := make([]Step, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		steps = append(steps, Step{
			ID:     stringField(m, "id"),
			Label:  stringField(m, "label"),
			Status: stringField(m, "status"),
		})
	}
	return steps
}

func uiMessagesField(fields map[string]any) []UIMessage {
	raw, _ := fields["uiMessages"].([]any)
	if len(raw) == 0 {
		return nil
	}
	msgs := make([]UIMessage, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		msgs = append(msgs, UIMessage{
			Role:    stringField(m, "role"),
			Content: stringField(m, "content"),
		})
	}
	return msgs
}

func actionsField(fields map[string]any) []SuggestedAction {
	raw, _ := fields["actions"].([]any)
	if len(raw) == 0 {
		return nil
	}
	actions := make([]SuggestedAction, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		actions = append(actions, SuggestedAction{
			ID:    stringField(m, "id"),
			Label: stringField(m, "label"),
		})
	}
	return actions
}
