// Package source resolves slang terms into meaning histories: saved terms
// come from the collection, new ones from an LLM analysis filled with
// Reddit comments.
package source

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/slangspace/internal/cache"
	"github.com/ppiankov/slangspace/internal/llm"
	"github.com/ppiankov/slangspace/internal/model"
	"github.com/ppiankov/slangspace/internal/store"
)

// EventType names a search progress event. The names double as SSE event
// names.
type EventType string

const (
	EventStatus   EventType = "status"
	EventCached   EventType = "cached"
	EventAnalysis EventType = "analysis"
	EventResult   EventType = "result"
	EventDone     EventType = "done"
	EventError    EventType = "error"
)

// Event is one step of a search
type Event struct {
	Type EventType
	Data any
}

// Message carries status and error text
type Message struct {
	Msg string `json:"msg"`
}

// Result is a finished search. FromDB is true when the term came from the
// saved collection.
type Result struct {
	model.SlangTerm
	FromDB bool `json:"fromDb"`
}

// ErrNoProvider is returned when a term needs analysis but no LLM is set up
var ErrNoProvider = errors.New("no LLM provider configured")

// Collection is the read side of the saved slang store
type Collection interface {
	Get(ctx context.Context, term string) (*model.SlangTerm, error)
}

// CommentSource fills analysed periods with comments
type CommentSource interface {
	FetchAllPeriods(ctx context.Context, term string, periods []model.Period) ([]model.Period, error)
}

// Searcher runs the lookup pipeline for one term at a time
type Searcher struct {
	collection Collection
	provider   llm.Provider
	comments   CommentSource
	results    *cache.Results
	log        *zap.Logger
}

// NewSearcher wires a searcher. provider and results may be nil.
func NewSearcher(collection Collection, provider llm.Provider, comments CommentSource, results *cache.Results, log *zap.Logger) *Searcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{
		collection: collection,
		provider:   provider,
		comments:   comments,
		results:    results,
		log:        log,
	}
}

// Search resolves term, reporting progress through emit. Every search ends
// with either a done or an error event. A search result is not saved.
func (s *Searcher) Search(ctx context.Context, term string, emit func(Event)) (*Result, error) {
	if emit == nil {
		emit = func(Event) {}
	}

	res, err := s.search(ctx, model.NormalizeTerm(term), emit)
	if err != nil {
		s.log.Warn("search failed", zap.String("term", term), zap.Error(err))
		emit(Event{Type: EventError, Data: Message{Msg: err.Error()}})
		return nil, err
	}
	emit(Event{Type: EventDone, Data: struct{}{}})
	return res, nil
}

// Lookup is Search without progress events
func (s *Searcher) Lookup(ctx context.Context, term string) (*model.SlangTerm, error) {
	res, err := s.Search(ctx, term, nil)
	if err != nil {
		return nil, err
	}
	return &res.SlangTerm, nil
}

// Cached returns a finished search from the result cache without running
// the pipeline
func (s *Searcher) Cached(term string) (*model.SlangTerm, bool) {
	if s.results == nil {
		return nil, false
	}
	return s.results.Get(term)
}

func (s *Searcher) search(ctx context.Context, term string, emit func(Event)) (*Result, error) {
	if term == "" {
		return nil, errors.New("empty term")
	}

	if s.collection != nil {
		saved, err := s.collection.Get(ctx, term)
		switch {
		case err == nil:
			res := &Result{SlangTerm: *saved, FromDB: true}
			res.IsCommitted = true
			emit(Event{Type: EventCached, Data: res})
			return res, nil
		case !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("collection: %w", err)
		}
	}

	if s.results != nil {
		if hit, ok := s.results.Get(term); ok {
			s.log.Debug("search cache hit", zap.String("term", term))
			res := &Result{SlangTerm: *hit}
			emit(Event{Type: EventResult, Data: res})
			return res, nil
		}
	}

	if s.provider == nil {
		return nil, ErrNoProvider
	}

	emit(Event{Type: EventStatus, Data: Message{Msg: "asking LLM..."}})
	analysis, err := s.provider.Analyze(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("analyze %q: %w", term, err)
	}
	emit(Event{Type: EventAnalysis, Data: analysis})

	periods := analysis.Periods
	if s.comments != nil {
		emit(Event{Type: EventStatus, Data: Message{Msg: "fetching reddit..."}})
		periods, err = s.comments.FetchAllPeriods(ctx, term, analysis.Periods)
		if err != nil {
			return nil, fmt.Errorf("fetch comments for %q: %w", term, err)
		}
	}
	if periods == nil {
		periods = []model.Period{}
	}

	res := &Result{SlangTerm: model.SlangTerm{
		Term:           term,
		CurrentMeaning: analysis.CurrentMeaning,
		Periods:        periods,
	}}
	emit(Event{Type: EventResult, Data: res})

	if s.results != nil {
		if err := s.results.Put(&res.SlangTerm); err != nil {
			s.log.Warn("caching search failed", zap.String("term", term), zap.Error(err))
		}
	}
	return res, nil
}
