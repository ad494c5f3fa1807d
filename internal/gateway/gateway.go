package gateway

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"beacon-dashboard/internal/domain"
	"beacon-dashboard/internal/events"
	"beacon-dashboard/internal/logging"
	"beacon-dashboard/internal/normalize"

	"golang.org/x/sync/singleflight"
)

//go:generate mockgen -destination=../mocks/gatewaymock/fetcher.go -package=gatewaymock . Fetcher

// Fetcher pulls the raw board items from upstream.
type Fetcher interface {
	FetchItems(ctx context.Context, token string) ([]domain.RawItem, error)
}

// TokenFunc yields the upstream API token. An empty token means none is set.
type TokenFunc func() (string, error)

// Recorder keeps one row per upstream attempt.
type Recorder interface {
	Record(ctx context.Context, a domain.FetchAttempt) error
}

type Options struct {
	Fetcher Fetcher
	Token   TokenFunc
	Cache   *Cache
	Fields  normalize.Fields
	// Catalog, when set, drops unknown opportunity labels during normalization.
	Catalog *domain.Catalog
	Log     Recorder
	Hub     events.Publisher
	Logger  *log.Logger
	Now     func() time.Time
}

type Service struct {
	fetcher Fetcher
	token   TokenFunc
	cache   *Cache
	fields  normalize.Fields
	catalog *domain.Catalog
	rec     Recorder
	hub     events.Publisher
	logger  *log.Logger
	now     func() time.Time

	group singleflight.Group
}

func New(o Options) *Service {
	now := o.Now
	if now == nil {
		now = time.Now
	}
	cache := o.Cache
	if cache == nil {
		cache = NewCache(30 * time.Second)
	}
	return &Service{
		fetcher: o.Fetcher,
		token:   o.Token,
		cache:   cache,
		fields:  o.Fields,
		catalog: o.Catalog,
		rec:     o.Log,
		hub:     o.Hub,
		logger:  logging.OrDefault(o.Logger),
		now:     now,
	}
}

// Result is a finished gateway answer: an HTTP status and a JSON-able body.
type Result struct {
	Status int
	Body   any
}

// SurveyData is the success body.
type SurveyData struct {
	Items       []domain.Response `json:"items"`
	Count       int               `json:"count"`
	LastUpdated string            `json:"lastUpdated"`
	Cached      bool              `json:"cached,omitempty"`
}

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func FormatTime(t time.Time) string { return t.UTC().Format(isoMillis) }

func success(s domain.Snapshot, cached bool) Result {
	items := s.Items
	if items == nil {
		items = []domain.Response{}
	}
	return Result{Status: http.StatusOK, Body: SurveyData{
		Items:       items,
		Count:       s.Count,
		LastUpdated: FormatTime(s.LastUpdated),
		Cached:      cached,
	}}
}

func (s *Service) Cache() *Cache { return s.cache }

// SurveyData answers one gateway request. It never returns an error: every
// failure is folded into the Result.
func (s *Service) SurveyData(ctx context.Context) Result {
	token, err := s.resolveToken()
	if err != nil {
		s.logger.Printf("[gateway] %v", err)
		return failure(err)
	}

	if snap, ok := s.cache.Fresh(s.now()); ok {
		return success(snap, false)
	}

	// the upstream call outlives any single caller once collapsed
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do("survey", func() (any, error) {
		return s.refresh(flightCtx, token)
	})
	if shared {
		s.logger.Printf("[gateway] joined in-flight upstream fetch")
	}
	if err != nil {
		if snap, ok := s.cache.Stale(); ok {
			s.logger.Printf("[gateway] upstream failed, serving stale data: %v", err)
			return success(snap, true)
		}
		s.logger.Printf("[gateway] upstream failed, no cache: %v", err)
		return failure(err)
	}
	return success(v.(domain.Snapshot), false)
}

func (s *Service) resolveToken() (string, error) {
	if s.token == nil {
		return "", ErrMissingCredential
	}
	tok, err := s.token()
	if err != nil || strings.TrimSpace(tok) == "" {
		return "", ErrMissingCredential
	}
	return strings.TrimSpace(tok), nil
}

func (s *Service) refresh(ctx context.Context, token string) (domain.Snapshot, error) {
	start := s.now()
	// a caller that missed just before another flight landed
	if snap, ok := s.cache.Fresh(start); ok {
		return snap, nil
	}

	raw, err := s.fetcher.FetchItems(ctx, token)
	attempt := domain.FetchAttempt{
		At:       start,
		Outcome:  Classify(err),
		Status:   statusOf(err),
		Duration: s.now().Sub(start).Milliseconds(),
	}
	if err != nil {
		attempt.Error = err.Error()
		s.record(ctx, attempt)
		events.Emit(s.hub, "", events.SurveyFetchFailed, map[string]any{
			"outcome": attempt.Outcome,
			"status":  attempt.Status,
			"error":   attempt.Error,
		})
		return domain.Snapshot{}, err
	}

	items := normalize.Items(raw, s.fields, s.catalog)
	snap := domain.NewSnapshot(items, s.now())
	s.cache.Store(snap, start)

	attempt.ItemCount = snap.Count
	s.record(ctx, attempt)
	s.logger.Printf("[gateway] fetched items=%d duration_ms=%d", snap.Count, attempt.Duration)
	events.Emit(s.hub, "", events.SurveyRefreshed, map[string]any{
		"count":       snap.Count,
		"lastUpdated": FormatTime(snap.LastUpdated),
	})
	return snap, nil
}

func (s *Service) record(ctx context.Context, a domain.FetchAttempt) {
	if s.rec == nil {
		return
	}
	if err := s.rec.Record(ctx, a); err != nil {
		s.logger.Printf("[gateway] fetch log: %v", err)
	}
}
