package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/slangspace/internal/model"
)

// Looker resolves a single term into its meaning history
type Looker interface {
	Lookup(ctx context.Context, term string) (*model.SlangTerm, error)
}

// Saver persists a resolved term. saved is false when the term was already
// present.
type Saver interface {
	Save(ctx context.Context, term *model.SlangTerm) (saved bool, err error)
}

// TermResult is the outcome of searching one term
type TermResult struct {
	Term  string
	Slang *model.SlangTerm
	Saved bool
	Error error
}

// BatchProcessor searches many terms concurrently
type BatchProcessor struct {
	looker      Looker
	saver       Saver
	concurrency int
	log         *zap.Logger
}

// NewBatchProcessor creates a batch processor. saver may be nil, in which
// case results are only returned.
func NewBatchProcessor(looker Looker, saver Saver, concurrency int, log *zap.Logger) *BatchProcessor {
	if log == nil {
		log = zap.NewNop()
	}
	return &BatchProcessor{
		looker:      looker,
		saver:       saver,
		concurrency: concurrency,
		log:         log,
	}
}

// ProcessTerms searches terms and returns one result per term in input order
func (b *BatchProcessor) ProcessTerms(ctx context.Context, terms []string) []*TermResult {
	if len(terms) == 0 {
		return []*TermResult{}
	}

	pool := NewPool[*TermResult](ctx, b.concurrency)
	pool.Start()

	for _, term := range terms {
		if !pool.Submit(func(ctx context.Context) *TermResult { return b.process(ctx, term) }) {
			break
		}
	}

	results := pool.Wait()
	out := make([]*TermResult, len(terms))
	for i, term := range terms {
		if i < len(results) && results[i] != nil {
			out[i] = results[i]
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		out[i] = &TermResult{Term: term, Error: fmt.Errorf("search %q: %w", term, err)}
	}
	return out
}

func (b *BatchProcessor) process(ctx context.Context, term string) *TermResult {
	result := &TermResult{Term: term}

	slang, err := b.looker.Lookup(ctx, term)
	if err != nil {
		b.log.Warn("search failed", zap.String("term", term), zap.Error(err))
		result.Error = fmt.Errorf("search %q: %w", term, err)
		return result
	}
	result.Slang = slang

	if b.saver != nil {
		saved, err := b.saver.Save(ctx, slang)
		if err != nil {
			result.Error = fmt.Errorf("save %q: %w", term, err)
			return result
		}
		result.Saved = saved
	}

	b.log.Debug("term done",
		zap.String("term", term),
		zap.Int("comments", slang.CommentCount()),
		zap.Bool("saved", result.Saved))
	return result
}

// ProcessFile reads terms from a file and searches them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*TermResult, error) {
	terms, err := ReadTermsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read terms: %w", err)
	}

	return b.ProcessTerms(ctx, terms), nil
}

// ReadTermsFromFile reads one term per line. Blank lines and lines starting
// with # are skipped; repeated terms are kept once.
func ReadTermsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var terms []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		term := model.NormalizeTerm(line)
		if !seen[term] {
			seen[term] = true
			terms = append(terms, term)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return terms, nil
}
