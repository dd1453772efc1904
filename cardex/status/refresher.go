package status

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kractero/cardex/cardex/logger"
)

// Flusher is the slice of the cache the refresher needs: a successful
// refresh invalidates every cached response in one sweep.
type Flusher interface {
	FlushAll(ctx context.Context) error
}

// Refresher replaces the status snapshot from the daily feed. On any
// failure the previous snapshot stays in place and the cache is left alone;
// the next scheduled run is the retry.
type Refresher struct {
	table   *Table
	flusher Flusher
	client  *http.Client
	feedURL string
	now     func() time.Time
}

func NewRefresher(table *Table, flusher Flusher, feedURL string) *Refresher {
	return &Refresher{
		table:   table,
		flusher: flusher,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
		feedURL: feedURL,
		now:     time.Now,
	}
}

// FeedDate computes the feed's date segment: the wall date at UTC-7,
// lagged one day behind, since the dump for a given day lands after it ends.
func FeedDate(now time.Time) string {
	return now.UTC().Add(-7 * time.Hour).AddDate(0, 0, -1).Format("2006-01-02")
}

// Refresh fetches the dated feed document, swaps the snapshot, and flushes
// the response cache.
func (r *Refresher) Refresh(ctx context.Context) error {
	date := FeedDate(r.now())
	url := fmt.Sprintf("%s/%s-cards.json", r.feedURL, date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		logger.LogError("Failed to fetch the latest CTE status", err,
			slog.String("url", url))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("status feed returned %s", resp.Status)
		logger.LogError("Failed to update cards CTE status", err,
			slog.String("url", url))
		return err
	}

	var snapshot map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		logger.LogError("Failed to decode CTE status feed", err,
			slog.String("url", url))
		return err
	}

	r.table.Replace(snapshot)

	if err := r.flusher.FlushAll(ctx); err != nil {
		logger.LogError("Failed to flush cache after status refresh", err)
	}

	logger.LogSystem("Updated CTE statuses",
		slog.String("date", date),
		slog.Int("cards", len(snapshot)))
	return nil
}
