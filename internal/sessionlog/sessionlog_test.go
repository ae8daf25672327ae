package sessionlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactReplacesMarkerMatchingStringsRecursively(t *testing.T) {
	payload := map[string]any{
		"api_key":  "sk-abcdef",
		"greeting": "hello world",
		"nested": map[string]any{
			"auth_token": "eyjabc",
			"list": []any{
				"my-secret-value",
				"plain",
			},
		},
	}

	out := RedactPayload(payload)

	assert.Equal(t, "[REDACTED]", out["api_key"])
	assert.Equal(t, "hello world", out["greeting"])
	nested := out["nested"].(map[string]any)
	assert.Equal(t, "[REDACTED]", nested["auth_token"])
	list := nested["list"].([]any)
	assert.Equal(t, "[REDACTED]", list[0])
	assert.Equal(t, "plain", list[1])
}

func TestRedactMatchesAnyOfTheFourMarkersCaseInsensitively(t *testing.T) {
	for _, v := range []string{"my KEY is x", "a Token value", "SECRET=1", "password123"} {
		assert.Equal(t, redactedPlaceholder, Redact(v), "expected %q to be redacted", v)
	}
	assert.Equal(t, "unrelated", Redact("unrelated"))
}

func TestRedactPayloadNilReturnsNil(t *testing.T) {
	assert.Nil(t, RedactPayload(nil))
}

func TestWriterAppendLineFormWritesRedactedJSONL(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(dir, "2026-07-31", "sess-1", FormLine, nil)
	require.NoError(t, err)

	require.NoError(t, w.Append(Event{
		Kind:    EventMeta,
		Payload: map[string]any{"api_key": "sk-123", "ok": true},
	}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "2026-07-31", "sess-1", "session.jsonl"))
	require.NoError(t, err)

	var decoded wireEventT
	require.NoError(t, json.Unmarshal(data[:len(data)-1], &decoded)) // drop trailing newline
	assert.Equal(t, "[REDACTED]", decoded.Payload["api_key"])
	assert.Equal(t, true, decoded.Payload["ok"])
}

func TestWriterAppendArrayFormAccumulates(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(dir, "2026-07-31", "sess-1", FormArray, nil)
	require.NoError(t, err)

	require.NoError(t, w.Append(Event{Kind: EventUserMsg, Payload: map[string]any{"n": 1}}))
	require.NoError(t, w.Append(Event{Kind: EventUserMsg, Payload: map[string]any{"n": 2}}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "2026-07-31", "sess-1", "session.json"))
	require.NoError(t, err)
	var events []wireEventT
	require.NoError(t, json.Unmarshal(data, &events))
	require.Len(t, events, 2)
}

func TestPurgeRemovesOnlyStaleDateDirectories(t *testing.T) {
	sessionsDir := t.TempDir()
	fresh := filepath.Join(sessionsDir, "fresh")
	stale := filepath.Join(sessionsDir, "stale")
	require.NoError(t, os.MkdirAll(fresh, 0o755))
	require.NoError(t, os.MkdirAll(stale, 0o755))

	old := time.Now().Add(-60 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	require.NoError(t, Purge(sessionsDir, 30, time.Now()))

	_, err := os.Stat(fresh)
	assert.NoError(t, err)
	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestPurgeMissingDirIsNotAnError(t *testing.T) {
	assert.NoError(t, Purge(filepath.Join(t.TempDir(), "missing"), 30, time.Now()))
}
