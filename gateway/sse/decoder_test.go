package sse

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func record(event, data string) string {
	var b strings.Builder
	if event != "" {
		b.WriteString("event: " + event + "\n")
	}
	b.WriteString("data: " + data + "\n\n")
	return b.String()
}

// TestDecodeFinalWinsOverEnd verifies the terminal-event dedupe invariant: a
// stream carrying both a final and a later end record delivers exactly one
// terminal callback, with the final record's content.
func TestDecodeFinalWinsOverEnd(t *testing.T) {
	stream := record("delta", `{"text":"Hel"}`) +
		record("final", `{"content":"Hello there"}`) +
		record("end", `{"content":"stale"}`)

	var finals []Final
	d := New(Handlers{
		OnFinal: func(f Final) { finals = append(finals, f) },
	})
	require.NoError(t, d.Decode(context.Background(), strings.NewReader(stream)))
	require.Len(t, finals, 1)
	require.Equal(t, "Hello there", finals[0].Content)
}

// TestDecodeDeltaThenChunkOrder verifies that a delta followed by a chunk
// fire once each, in wire order, before the terminal callback.
func TestDecodeDeltaThenChunkOrder(t *testing.T) {
	stream := record("delta", `{"text":"Hel"}`) +
		record("chunk", `{"cumulativeText":"Hello"}`) +
		record("final", `{"content":"Hello"}`)

	var order []string
	d := New(Handlers{
		OnDelta: func(e Delta) { order = append(order, "delta:"+e.Text) },
		OnChunk: func(e Chunk) { order = append(order, "chunk:"+e.CumulativeText) },
		OnFinal: func(f Final) { order = append(order, "final:"+f.Content) },
	})
	require.NoError(t, d.Decode(context.Background(), strings.NewReader(stream)))
	require.Equal(t, []string{"delta:Hel", "chunk:Hello", "final:Hello"}, order)
}

// TestDecodeTrailingRecord verifies that a stream ending without a blank-line
// separator still dispatches the last record.
func TestDecodeTrailingRecord(t *testing.T) {
	stream := record("delta", `{"text":"a"}`) +
		"event: final\ndata: {\"content\":\"done\"}"

	var final *Final
	d := New(Handlers{
		OnFinal: func(f Final) { final = &f },
	})
	require.NoError(t, d.Decode(context.Background(), strings.NewReader(stream)))
	require.NotNil(t, final)
	require.Equal(t, "done", final.Content)
}

// TestDecodeMalformedPayload verifies that unparseable payload text is wrapped
// as {"content": raw} instead of crashing or being dropped.
func TestDecodeMalformedPayload(t *testing.T) {
	stream := record("final", `this is not JSON`)

	var final *Final
	d := New(Handlers{
		OnFinal: func(f Final) { final = &f },
	})
	require.NoError(t, d.Decode(context.Background(), strings.NewReader(stream)))
	require.NotNil(t, final)
	require.Equal(t, "this is not JSON", final.Content)
}

// TestDecodeEmbeddedEventName verifies that when the wire-level event name is
// absent or the generic placeholder, the effective event comes from the
// payload's own "event" field.
func TestDecodeEmbeddedEventName(t *testing.T) {
	stream := record("", `{"event":"status","stage":"retrieving"}`) +
		record("message", `{"event":"final","content":"ok"}`)

	var stages []string
	var final *Final
	d := New(Handlers{
		OnStatus: func(e Status) { stages = append(stages, e.Stage) },
		OnFinal:  func(f Final) { final = &f },
	})
	require.NoError(t, d.Decode(context.Background(), strings.NewReader(stream)))
	require.Equal(t, []string{"retrieving"}, stages)
	require.NotNil(t, final)
	require.Equal(t, "ok", final.Content)
}

func TestDecodeIgnoresUnknownEvents(t *testing.T) {
	stream := record("heartbeat", `{}`) +
		record("telemetry", `{"spanId":"abc"}`) +
		record("final", `{"content":"ok"}`)

	var finals int
	d := New(Handlers{
		OnFinal: func(Final) { finals++ },
	})
	require.NoError(t, d.Decode(context.Background(), strings.NewReader(stream)))
	require.Equal(t, 1, finals)
}

func TestDecodeMultiLineData(t *testing.T) {
	stream := "event: final\ndata: {\"content\":\ndata: \"joined\"}\n\n"

	var final *Final
	d := New(Handlers{
		OnFinal: func(f Final) { final = &f },
	})
	require.NoError(t, d.Decode(context.Background(), strings.NewReader(stream)))
	require.NotNil(t, final)
	require.Equal(t, "joined", final.Content)
}

func TestDecodeStartStepsAndComments(t *testing.T) {
	stream := ": keepalive\n" +
		record("start", `{"steps":[{"id":"s1","label":"Search","status":"pending"}]}`) +
		record("step_update", `{"stepId":"s1","status":"done"}`) +
		record("final", `{"content":"x","steps":[{"id":"s1","status":"done"}],"uiMessages":[{"role":"assistant","content":"hi"}],"actions":[{"id":"a1","label":"Reply"}]}`)

	var start *Start
	var update *StepUpdate
	var final *Final
	d := New(Handlers{
		OnStart:      func(e Start) { start = &e },
		OnStepUpdate: func(e StepUpdate) { update = &e },
		OnFinal:      func(f Final) { final = &f },
	})
	require.NoError(t, d.Decode(context.Background(), strings.NewReader(stream)))
	require.NotNil(t, start)
	require.Equal(t, "s1", start.Steps[0].ID)
	require.NotNil(t, update)
	require.Equal(t, "done", update.Status)
	require.NotNil(t, final)
	require.Len(t, final.UIMessages, 1)
	require.Len(t, final.Actions, 1)
}

// TestDecodeCancellation verifies that cancellation invokes the abort callback
// exactly once and suppresses any terminal data event, even when the transport
// still has buffered records.
func TestDecodeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream := record("delta", `{"text":"a"}`) + record("final", `{"content":"done"}`)

	var mu sync.Mutex
	var aborts, finals, deltas int
	d := New(Handlers{
		OnDelta: func(Delta) { mu.Lock(); deltas++; mu.Unlock() },
		OnFinal: func(Final) { mu.Lock(); finals++; mu.Unlock() },
		OnAbort: func() { mu.Lock(); aborts++; mu.Unlock() },
	})
	require.NoError(t, d.Decode(ctx, strings.NewReader(stream)))
	require.Equal(t, 1, aborts)
	require.Zero(t, finals)
	require.Zero(t, deltas)
}

// TestDecodeReadFailureAfterCancel verifies that a transport error caused by
// cancellation (the HTTP layer closes the body) surfaces as an abort, not a
// read error.
func TestDecodeReadFailureAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	r := &cancelingReader{cancel: cancel}
	var aborts int
	d := New(Handlers{
		OnAbort: func() { aborts++ },
	})
	require.NoError(t, d.Decode(ctx, r))
	require.Equal(t, 1, aborts)
}

// cancelingReader delivers one partial line, then cancels the context and
// fails the next read the way net/http does when a request context ends.
type cancelingReader struct {
	cancel context.CancelFunc
	calls  int
}

func (r *cancelingReader) Read(p []byte) (int, error) {
	r.calls++
	if r.calls == 1 {
		return copy(p, []byte("event: delta\n")), nil
	}
	r.cancel()
	return 0, errors.New("use of closed network connection")
}
