package interact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/slangspace/internal/model"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReplay(t *testing.T) {
	h := newHarness(t, 11)
	committed(h, rizz())

	script, err := LoadScript(writeScript(t, `
steps:
  - move: {term: rizz}
  - click: {term: rizz}
  - leave: true
  - highlight: Rizz
  - preview: mid
    tick: 2
  - zoom: 0.9
`))
	require.NoError(t, err)
	require.Len(t, script.Steps, 6)

	previews := map[string]model.SlangTerm{"mid": slang("mid", map[string]int{"2024-02": 3})}
	require.NoError(t, h.ctrl.Replay(script, previews))

	require.Len(t, h.hovers, 2)
	require.NotNil(t, h.hovers[0].comment)
	assert.Equal(t, "rizz", h.hovers[0].term)
	assert.Nil(t, h.hovers[1].comment)

	require.Len(t, h.clicks, 1)
	assert.Equal(t, "rizz", h.clicks[0].term)

	assert.Equal(t, "rizz", h.ctrl.Scene().Pinned())
	assert.Equal(t, "mid", h.ctrl.PreviewTerm())
	assert.Equal(t, 2, h.rec.Stats().Frames)

	census := h.ctrl.Scene().Census()
	assert.Equal(t, 1, census.Visited)
	assert.Equal(t, 3, census.Preview)
	assert.Equal(t, 40, census.Pinned)
}

func TestReplayClearsPreview(t *testing.T) {
	h := newHarness(t, 3)
	previews := map[string]model.SlangTerm{"mid": slang("mid", map[string]int{"2024-02": 3})}

	script := &Script{Steps: []Step{
		{Preview: ptr("mid")},
		{Preview: ptr("")},
	}}
	require.NoError(t, h.ctrl.Replay(script, previews))
	assert.Empty(t, h.ctrl.PreviewTerm())
	assert.Empty(t, h.ctrl.Scene().Terms())
}

func TestReplayErrors(t *testing.T) {
	h := newHarness(t, 5)

	err := h.ctrl.Replay(&Script{Steps: []Step{{Preview: ptr("ghost")}}}, nil)
	assert.ErrorContains(t, err, "step 1")

	err = h.ctrl.Replay(&Script{Steps: []Step{{Leave: true}, {Move: &Pointer{Term: "rizz"}}}}, nil)
	assert.ErrorContains(t, err, "step 2")
}

func TestLoadScriptRejectsUnknownKeys(t *testing.T) {
	_, err := LoadScript(writeScript(t, "steps:\n  - hover: {x: 0}\n"))
	assert.Error(t, err)

	_, err = LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestAim(t *testing.T) {
	h := newHarness(t, 8)
	committed(h, rizz())

	x, y, ok := h.ctrl.Aim("rizz", 0)
	require.True(t, ok)
	hit := h.ctrl.Scene().Pick(h.ctrl.Camera().Ray(x, y))
	require.NotNil(t, hit)
	assert.Equal(t, "rizz", hit.Term)

	_, _, ok = h.ctrl.Aim("rizz", 10_000)
	assert.False(t, ok)
}

func ptr(s string) *string { return &s }
