package dispatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codexcore/runtime/internal/sessionlog"
	"github.com/codexcore/runtime/internal/taskset"
)

func TestExecBridgeReportsExitCodeNotGoError(t *testing.T) {
	bridge := NewExecBridge(t.TempDir())
	result, err := bridge(context.Background(), "sh", []string{"-c", "exit 7"})
	require.NoError(t, err)
	assert.Equal(t, 7, result.ExitCode)
}

func TestExecBridgeCapturesCombinedOutput(t *testing.T) {
	bridge := NewExecBridge(t.TempDir())
	result, err := bridge(context.Background(), "sh", []string{"-c", "echo hello"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.OutputPreview, "hello")
}

func TestExecBridgeMissingBinaryIsGoError(t *testing.T) {
	bridge := NewExecBridge(t.TempDir())
	_, err := bridge(context.Background(), "definitely-not-a-real-binary", nil)
	assert.Error(t, err)
}

func TestExecBridgeRunsInConfiguredCwd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0o644))

	bridge := NewExecBridge(dir)
	result, err := bridge(context.Background(), "ls", nil)
	require.NoError(t, err)
	assert.Contains(t, result.OutputPreview, "marker.txt")
}

type recordedSink struct {
	events []taskset.UIEvent
}

func (r *recordedSink) Emit(ev taskset.UIEvent) { r.events = append(r.events, ev) }

func TestFanOutForwardsToEverySinkInOrderSkippingNil(t *testing.T) {
	a, b := &recordedSink{}, &recordedSink{}
	fan := NewFanOut(a, nil, b)

	ev := taskset.UIEvent{Kind: taskset.UIEventTaskStart, TaskID: "t1"}
	fan.Emit(ev)

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, "t1", a.events[0].TaskID)
}

func TestChannelSinkDropsWhenBufferFull(t *testing.T) {
	sink := NewChannelSink(1)
	sink.Emit(taskset.UIEvent{TaskID: "first"})
	sink.Emit(taskset.UIEvent{TaskID: "second"}) // must not block

	received := <-sink.Events()
	assert.Equal(t, "first", received.TaskID)
}

func TestChannelSinkDefaultsZeroOrNegativeBufferToOne(t *testing.T) {
	sink := NewChannelSink(0)
	sink.Emit(taskset.UIEvent{TaskID: "only"})
	assert.Equal(t, "only", (<-sink.Events()).TaskID)
}

func TestSessionLogSinkAppendsMetaEventWithOutcomeFields(t *testing.T) {
	dir := t.TempDir()
	w, err := sessionlog.Open(dir, "2026-07-31", "sess-1", sessionlog.FormLine, nil)
	require.NoError(t, err)

	sink := NewSessionLogSink(w, nil)
	sink.Emit(taskset.UIEvent{
		Kind:   taskset.UIEventTaskEnd,
		SetID:  "set-1",
		TaskID: "t1",
		Outcome: taskset.TaskOutcome{
			OK:       false,
			Error:    "exit 1",
			Duration: 2 * time.Second,
		},
	})
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "2026-07-31", "sess-1", "session.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ok":false`)
	assert.Contains(t, string(data), "exit 1")
}

func TestAutoConfirmerAlwaysContinues(t *testing.T) {
	cont, err := AutoConfirmer(context.Background(), "set", "summary")
	require.NoError(t, err)
	assert.True(t, cont)
}

func TestStdinConfirmerPassesThroughPromptResult(t *testing.T) {
	confirmer := StdinConfirmer(func(setTitle, summary string) (bool, error) {
		return setTitle == "wanted", nil
	})

	cont, err := confirmer(context.Background(), "wanted", "summary")
	require.NoError(t, err)
	assert.True(t, cont)

	cont, err = confirmer(context.Background(), "other", "summary")
	require.NoError(t, err)
	assert.False(t, cont)
}

func TestStdinConfirmerUnblocksOnContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	confirmer := StdinConfirmer(func(setTitle, summary string) (bool, error) {
		<-blocked // never returns within the test
		return true, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cont, err := confirmer(ctx, "set", "summary")
	assert.Error(t, err)
	assert.False(t, cont)
	close(blocked)
}

func TestBridgeErrorWrapsAndUnwraps(t *testing.T) {
	base := errors.New("connection refused")
	wrapped := WrapExecError(base)

	require.Error(t, wrapped)
	assert.Contains(t, wrapped.Error(), "exec bridge")
	assert.ErrorIs(t, wrapped, base)
}

func TestWrapNilErrorPassesThroughUnchanged(t *testing.T) {
	assert.NoError(t, WrapChatError(nil))
	assert.NoError(t, WrapExecError(nil))
	assert.NoError(t, WrapMcpError(nil))
}
