package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/ppiankov/slangspace/internal/model"
	"github.com/ppiankov/slangspace/internal/util"
	"github.com/ppiankov/slangspace/internal/worker"
)

// ErrDisallowed is returned when robots.txt forbids the search endpoint
var ErrDisallowed = errors.New("search endpoint disallowed by robots.txt")

// Fetcher pages through Reddit's public search and collects comments that
// mention a term.
type Fetcher struct {
	httpClient *http.Client
	searchURL  string
	userAgent  string
	perPeriod  int
	pageSize   int
	maxChars   int
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	log        *zap.Logger
}

// NewFetcher creates a fetcher from cfg. Zero values fall back to the
// built-in defaults.
func NewFetcher(cfg model.RedditConfig, log *zap.Logger) *Fetcher {
	def := model.DefaultConfig().Reddit
	if cfg.SearchURL == "" {
		cfg.SearchURL = def.SearchURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.PerPeriod <= 0 {
		cfg.PerPeriod = def.PerPeriod
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = def.MaxTextChars
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, ""),
		},
	}

	f := &Fetcher{
		httpClient: client,
		searchURL:  cfg.SearchURL,
		userAgent:  cfg.UserAgent,
		perPeriod:  cfg.PerPeriod,
		pageSize:   cfg.PageSize,
		maxChars:   cfg.MaxTextChars,
		limiter:    worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		log:        log,
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(cfg.UserAgent, client)
	}
	return f
}

type listing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	Author       string  `json:"author"`
	Body         string  `json:"body"`
	BodyHTML     string  `json:"body_html"`
	Selftext     string  `json:"selftext"`
	SelftextHTML string  `json:"selftext_html"`
	Title        string  `json:"title"`
	CreatedUTC   float64 `json:"created_utc"`
}

// text picks the comment body, then the post body, then the title. Bodies
// only available as escaped HTML are flattened.
func (p post) text() string {
	candidates := []struct{ plain, markup string }{
		{p.Body, p.BodyHTML},
		{p.Selftext, p.SelftextHTML},
		{p.Title, ""},
	}
	for _, c := range candidates {
		if c.plain != "" {
			return c.plain
		}
		if c.markup != "" {
			if t := util.HTMLText(html.UnescapeString(c.markup)); t != "" {
				return t
			}
		}
	}
	return ""
}

// FetchComments collects up to roughly total comments mentioning term.
// Paging stops at the first failed page; what was gathered so far is
// returned. Only context cancellation and robots.txt refusal are errors.
func (f *Fetcher) FetchComments(ctx context.Context, term string, total int) ([]model.Comment, error) {
	if err := f.checkRobots(ctx); err != nil {
		return nil, err
	}

	needle := strings.ToLower(term)
	var all []model.Comment
	after := ""

	for len(all) < total {
		if err := f.limiter.Wait(ctx, f.searchURL); err != nil {
			return all, err
		}

		page, err := f.page(ctx, term, after)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			f.log.Warn("reddit page failed", zap.String("term", term), zap.Error(err))
			break
		}

		f.log.Debug("reddit page",
			zap.String("term", term),
			zap.Int("raw", len(page.Data.Children)),
			zap.String("after", page.Data.After))

		for _, child := range page.Data.Children {
			text := child.Data.text()
			if text == "" || !strings.Contains(strings.ToLower(text), needle) {
				continue
			}
			all = append(all, model.Comment{
				User: child.Data.Author,
				Text: clip(text, f.maxChars),
				Time: isoDate(child.Data.CreatedUTC),
			})
		}

		after = page.Data.After
		if after == "" || len(page.Data.Children) == 0 {
			break
		}
	}

	f.log.Info("reddit comments", zap.String("term", term), zap.Int("count", len(all)))
	return all, nil
}

// FetchAllPeriods fetches perPeriod comments for every period and deals
// them out in order. Periods beyond the fetched comments get none.
func (f *Fetcher) FetchAllPeriods(ctx context.Context, term string, periods []model.Period) ([]model.Period, error) {
	if len(periods) == 0 {
		return []model.Period{}, nil
	}

	comments, err := f.FetchComments(ctx, term, len(periods)*f.perPeriod)
	if err != nil {
		return nil, err
	}
	return Distribute(periods, comments, f.perPeriod), nil
}

// Distribute hands out consecutive chunks of size per to each period. The
// input periods are not modified.
func Distribute(periods []model.Period, comments []model.Comment, per int) []model.Period {
	out := make([]model.Period, len(periods))
	idx := 0
	for i, p := range periods {
		end := min(idx+per, len(comments))
		start := min(idx, len(comments))
		chunk := make([]model.Comment, end-start)
		copy(chunk, comments[start:end])
		p.Comments = chunk
		out[i] = p
		idx += per
	}
	return out
}

func (f *Fetcher) checkRobots(ctx context.Context) error {
	if f.robots == nil {
		return nil
	}
	allowed, delay, err := f.robots.CanFetch(ctx, f.searchURL)
	if err != nil {
		return fmt.Errorf("robots check: %w", err)
	}
	if !allowed {
		return ErrDisallowed
	}
	return f.limiter.Slow(f.searchURL, delay)
}

func (f *Fetcher) page(ctx context.Context, term, after string) (*listing, error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("sort", "relevance")
	params.Set("limit", strconv.Itoa(f.pageSize))
	if after != "" {
		params.Set("after", after)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var l listing
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return &l, nil
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func isoDate(createdUTC float64) string {
	if createdUTC <= 0 {
		return ""
	}
	sec := int64(createdUTC)
	nsec := int64((createdUTC - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC().Format("2006-01-02")
}
