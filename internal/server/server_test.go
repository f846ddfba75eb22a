package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/slangspace/internal/model"
	"github.com/ppiankov/slangspace/internal/scene"
	"github.com/ppiankov/slangspace/internal/source"
	"github.com/ppiankov/slangspace/internal/store"
)

type fakeSearcher struct {
	cached map[string]model.SlangTerm
	fail   bool
}

func (f *fakeSearcher) Search(ctx context.Context, term string, emit func(source.Event)) (*source.Result, error) {
	if f.fail {
		err := errors.New("missing OPENROUTER_API_KEY")
		emit(source.Event{Type: source.EventError, Data: source.Message{Msg: err.Error()}})
		return nil, err
	}
	emit(source.Event{Type: source.EventStatus, Data: source.Message{Msg: "asking LLM..."}})
	res := &source.Result{SlangTerm: model.SlangTerm{Term: term, CurrentMeaning: "charisma", Periods: []model.Period{}}}
	emit(source.Event{Type: source.EventResult, Data: res})
	emit(source.Event{Type: source.EventDone, Data: struct{}{}})
	return res, nil
}

func (f *fakeSearcher) Cached(term string) (*model.SlangTerm, bool) {
	st, ok := f.cached[term]
	return &st, ok
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Layout.DecoyCount = 10
	cfg.Layout.Seed = 7
	return cfg
}

func newTestServer(t *testing.T, searcher *fakeSearcher) (*httptest.Server, *store.SQLiteStore) {
	t.Helper()
	slangs, err := store.Open(model.StoreConfig{Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = slangs.Close() })

	if searcher == nil {
		searcher = &fakeSearcher{}
	}
	srv := httptest.NewServer(New(testConfig(), slangs, searcher, nil).Router())
	t.Cleanup(srv.Close)
	return srv, slangs
}

func dated(term, month string, n int) model.SlangTerm {
	var comments []model.Comment
	for i := 0; i < n; i++ {
		comments = append(comments, model.Comment{
			User: fmt.Sprintf("u/%d", i),
			Text: fmt.Sprintf("%s comment %d", term, i),
			Time: month + "-15",
		})
	}
	return model.SlangTerm{Term: term, Periods: []model.Period{{TimeRange: month, Comments: comments}}}
}

type sseEvent struct {
	name string
	data string
}

func readEvents(t *testing.T, resp *http.Response) []sseEvent {
	t.Helper()
	var events []sseEvent
	var cur sseEvent
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			cur.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			cur.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if cur.name != "" {
				events = append(events, cur)
			}
			cur = sseEvent{}
		}
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListSlangs(t *testing.T) {
	srv, slangs := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/slangs")
	require.NoError(t, err)
	var empty []model.SlangTerm
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&empty))
	resp.Body.Close()
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	st := dated("rizz", "2021-03", 2)
	_, err = slangs.Save(context.Background(), &st)
	require.NoError(t, err)

	resp, err = http.Get(srv.URL + "/api/slangs")
	require.NoError(t, err)
	defer resp.Body.Close()
	var list []model.SlangTerm
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "rizz", list[0].Term)
	assert.True(t, list[0].IsCommitted)
}

func TestStream(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/slang/Rizz/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	events := readEvents(t, resp)
	require.Len(t, events, 3)
	assert.Equal(t, "status", events[0].name)
	assert.JSONEq(t, `{"msg":"asking LLM..."}`, events[0].data)
	assert.Equal(t, "result", events[1].name)
	assert.Contains(t, events[1].data, `"term":"rizz"`)
	assert.Contains(t, events[1].data, `"fromDb":false`)
	assert.Equal(t, "done", events[2].name)
	assert.Equal(t, "{}", events[2].data)
}

func TestStreamError(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSearcher{fail: true})

	resp, err := http.Get(srv.URL + "/api/slang/rizz/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	events := readEvents(t, resp)
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].name)
	assert.JSONEq(t, `{"msg":"missing OPENROUTER_API_KEY"}`, events[0].data)
}

func TestSave(t *testing.T) {
	srv, slangs := newTestServer(t, nil)

	body, err := json.Marshal(dated("Skibidi", "2023-01", 3))
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/slang/save", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var first saveResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&first))
	resp.Body.Close()
	assert.True(t, first.OK)
	require.NotNil(t, first.Doc)
	assert.Equal(t, "skibidi", first.Doc.Term)
	assert.Equal(t, 3, first.Doc.CommentCount())

	resp, err = http.Post(srv.URL+"/api/slang/save", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var second saveResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&second))
	assert.True(t, second.OK)
	assert.Equal(t, "already saved", second.Msg)
	assert.Nil(t, second.Doc)

	n, err := slangs.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveBadRequest(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for _, body := range []string{"{not json", `{"term": "  "}`} {
		resp, err := http.Post(srv.URL+"/api/slang/save", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestScene(t *testing.T) {
	searcher := &fakeSearcher{cached: map[string]model.SlangTerm{"mid": dated("mid", "2024-02", 4)}}
	srv, slangs := newTestServer(t, searcher)
	ctx := context.Background()

	for _, st := range []model.SlangTerm{dated("rizz", "2021-03", 16), dated("cap", "2020-02", 5)} {
		_, err := slangs.Save(ctx, &st)
		require.NoError(t, err)
	}

	resp, err := http.Get(srv.URL + "/api/scene?highlight=rizz&preview=mid")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap scene.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, "rizz", snap.Pinned)
	assert.Equal(t, 10, snap.Decoys)
	require.Len(t, snap.Terms, 3)

	byTerm := map[string]scene.TermSnapshot{}
	for _, ts := range snap.Terms {
		byTerm[ts.Term] = ts
	}
	assert.True(t, byTerm["mid"].Temporary)
	assert.False(t, byTerm["rizz"].Temporary)

	tiles := 0
	for _, c := range byTerm["rizz"].Clusters {
		tiles += len(c.Tiles)
	}
	assert.Equal(t, 16, tiles)
}

func TestSceneSeedIsDeterministic(t *testing.T) {
	srv, slangs := newTestServer(t, nil)
	st := dated("rizz", "2021-03", 12)
	_, err := slangs.Save(context.Background(), &st)
	require.NoError(t, err)

	get := func() []scene.ClusterSnapshot {
		resp, err := http.Get(srv.URL + "/api/scene?seed=42")
		require.NoError(t, err)
		defer resp.Body.Close()
		var snap scene.Snapshot
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
		require.Len(t, snap.Terms, 1)
		clusters := snap.Terms[0].Clusters
		for i := range clusters {
			clusters[i].ID = "" // cluster ids are random per scene
		}
		return clusters
	}
	assert.Equal(t, get(), get())

	resp, err := http.Get(srv.URL + "/api/scene?seed=abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var msg message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	assert.Equal(t, "API route not found", msg.Msg)
}
