package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/kractero/cardex/cardex/database"
	"github.com/kractero/cardex/cardex/database/models"
	"github.com/kractero/cardex/cardex/logger"
	"github.com/kractero/cardex/cardex/query"
	"github.com/kractero/cardex/cardex/status"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 500

	queryTimeout = 30 * time.Second
)

// ResultCache is the slice of the cache store the service depends on.
type ResultCache interface {
	Get(ctx context.Context, key, origin string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, origin string)
}

// CardService answers card queries through a read-through cache. Identical
// logical queries share one cache entry via the canonical key, and
// concurrent misses for the same key collapse into a single store round-trip.
type CardService struct {
	db     *database.DB
	cache  ResultCache
	status *status.Table
	group  singleflight.Group
}

func NewCardService(db *database.DB, cache ResultCache, table *status.Table) *CardService {
	return &CardService{
		db:     db,
		cache:  cache,
		status: table,
	}
}

type QueryRequest struct {
	Select  string
	From    string
	Clauses string
	Limit   int
	Page    int
	Origin  string
}

type QueryResult struct {
	Total int            `json:"total"`
	Limit int            `json:"limit"`
	Page  int            `json:"page"`
	Cards []*models.Card `json:"cards"`
}

// Query runs one card query end to end: parse, compile, cached execution,
// status overlay, post-filter. The overlay and post-filter run on cache hits
// too, so a cached row set never serves a status verdict older than the last
// refresh.
func (s *CardService) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	proj := query.ParseProjection(req.Select)
	part := query.ParsePartition(req.From)
	clauses := query.ParseClauses(req.Clauses)
	compiled := query.Compile(clauses)

	limit, page, offset := paginate(req.Limit, req.Page)
	key := query.CacheKey(proj, part, compiled.Effective, limit, page)

	payload, err, _ := s.group.Do(key, func() (interface{}, error) {
		if data, ok := s.cache.Get(ctx, key, req.Origin); ok {
			return data, nil
		}

		result, err := s.execute(ctx, proj, part, compiled.Predicates, limit, page, offset)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to encode result: %w", err)
		}
		s.cache.Set(ctx, key, data, req.Origin)
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	// Each caller decodes its own copy; the singleflight payload is shared
	// and the overlay below mutates rows.
	var result QueryResult
	if err := json.Unmarshal(payload.([]byte), &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}

	s.overlay(result.Cards)
	if compiled.Status != nil {
		result.Cards = filterByStatus(result.Cards, compiled.Status)
	}

	return &result, nil
}

func (s *CardService) execute(ctx context.Context, proj query.Projection, part query.Partition, preds []query.Predicate, limit, page, offset int) (*QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var cards []*models.Card
	sel, count := query.Build(s.db.BunDB(), proj, part, preds, limit, offset, &cards)

	start := time.Now()
	err := sel.Scan(ctx)
	logger.LogQuery(sel.String(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cards: %w", err)
	}

	total, err := count.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count cards: %w", err)
	}

	if cards == nil {
		cards = []*models.Card{}
	}
	return &QueryResult{Total: total, Limit: limit, Page: page, Cards: cards}, nil
}

// StatusFor answers a bulk status lookup against the current snapshot,
// cached under the order-independent signature of the id list.
func (s *CardService) StatusFor(ctx context.Context, ids []string, origin string) (map[string]bool, error) {
	key := query.StatusKey(ids)

	if data, ok := s.cache.Get(ctx, key, origin); ok {
		var cached map[string]bool
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	statuses := make(map[string]bool, len(ids))
	for _, id := range ids {
		statuses[id] = s.status.Lookup(id)
	}

	if data, err := json.Marshal(statuses); err == nil {
		s.cache.Set(ctx, key, data, origin)
	}
	return statuses, nil
}

func (s *CardService) overlay(cards []*models.Card) {
	for _, card := range cards {
		card.CTE = s.status.Lookup(strconv.FormatInt(card.ID, 10))
	}
}

// filterByStatus re-filters rows against the live snapshot. The value token
// "Exists" keeps rows whose flag is currently set; any other token keeps the
// complement.
func filterByStatus(cards []*models.Card, clause *query.Clause) []*models.Card {
	want := clause.Value == "Exists"
	kept := make([]*models.Card, 0, len(cards))
	for _, card := range cards {
		if card.CTE == want {
			kept = append(kept, card)
		}
	}
	return kept
}

func paginate(limit, page int) (int, int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	offset := limit * (page - 1)
	if offset < 0 {
		offset = 0
	}
	return limit, page, offset
}
