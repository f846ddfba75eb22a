package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ppiankov/slangspace/internal/interact"
	"github.com/ppiankov/slangspace/internal/model"
	"github.com/ppiankov/slangspace/internal/scene"
	"github.com/ppiankov/slangspace/internal/source"
)

// maxSaveBody caps the size of a saved term payload
const maxSaveBody = 4 << 20

type message struct {
	Msg string `json:"msg"`
}

type saveResponse struct {
	OK  bool             `json:"ok"`
	Msg string           `json:"msg,omitempty"`
	Doc *model.SlangTerm `json:"doc,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.slangs.List(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []model.SlangTerm{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleStream runs a search and relays its progress as server-sent events.
// Failures are reported as an error event on a 200 stream.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	term := model.NormalizeTerm(chi.URLParam(r, "term"))

	stream, ok := newEventStream(w)
	if !ok {
		s.fail(w, r, http.StatusInternalServerError, errStreamingUnsupported)
		return
	}

	_, _ = s.searcher.Search(r.Context(), term, func(e source.Event) {
		if err := stream.Send(string(e.Type), e.Data); err != nil {
			s.log.Debug("event write failed", zap.String("term", term), zap.Error(err))
		}
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var st model.SlangTerm
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSaveBody)).Decode(&st); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	st.Term = model.NormalizeTerm(st.Term)
	if st.Term == "" {
		writeJSON(w, http.StatusBadRequest, message{Msg: "term is required"})
		return
	}

	saved, err := s.slangs.Save(r.Context(), &st)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if !saved {
		writeJSON(w, http.StatusOK, saveResponse{OK: true, Msg: "already saved"})
		return
	}

	doc, err := s.slangs.Get(r.Context(), st.Term)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{OK: true, Doc: doc})
}

// handleScene lays out the saved collection and returns a snapshot.
// Query parameters: highlight pins a term, preview adds a cached search
// result as a temporary term, seed fixes the layout randomness.
func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	seed := s.cfg.Layout.Seed
	if raw := q.Get("seed"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, message{Msg: "seed must be an integer"})
			return
		}
		seed = v
	}

	list, err := s.slangs.List(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	sc := scene.New(s.cfg, nil, scene.NewRand(seed), s.log)
	ctl := interact.New(sc, scene.NewCamera(s.cfg.Camera), interact.Callbacks{}, s.cfg.Layout.BuildsPerTick, s.log)
	defer ctl.Dispose()

	ctl.Handle(interact.Sync{Slangs: list})
	ctl.Flush()

	if preview := strings.TrimSpace(q.Get("preview")); preview != "" {
		if st, ok := s.searcher.Cached(preview); ok {
			ctl.Handle(interact.Preview{Term: st})
		}
	}
	if highlight := strings.TrimSpace(q.Get("highlight")); highlight != "" {
		ctl.Handle(interact.Highlight{Term: model.NormalizeTerm(highlight)})
	}
	ctl.Tick()

	writeJSON(w, http.StatusOK, sc.Snapshot())
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.log.Info("API route not found", zap.String("method", r.Method), zap.String("path", r.URL.Path))
	writeJSON(w, http.StatusNotFound, message{Msg: "API route not found"})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.log.Warn("request failed",
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	writeJSON(w, status, message{Msg: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
