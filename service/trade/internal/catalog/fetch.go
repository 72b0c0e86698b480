package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Limite sulla dimensione di ciascun documento scaricato.
const maxDocumentBytes = 32 << 20

// URLs indica dove scaricare i tre documenti del dataset.
type URLs struct {
	Cards  string
	Sets   string
	Rarity string
}

// HTTPSource scarica lo snapshot dal dataset pubblico.
type HTTPSource struct {
	client *http.Client
	urls   URLs
	now    func() time.Time
}

// NewHTTPSource usa un client con timeout se non ne viene passato uno.
func NewHTTPSource(client *http.Client, urls URLs) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPSource{client: client, urls: urls, now: time.Now}
}

// Fetch scarica carte, set e rarita' in parallelo.
func (s *HTTPSource) Fetch(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.get(ctx, s.urls.Cards)
		snap.Cards = b
		return err
	})
	g.Go(func() error {
		b, err := s.get(ctx, s.urls.Sets)
		snap.Sets = b
		return err
	})
	g.Go(func() error {
		b, err := s.get(ctx, s.urls.Rarity)
		snap.Rarity = b
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.FetchedAt = s.now().UTC()
	return snap, nil
}

func (s *HTTPSource) get(ctx context.Context, url string) (json.RawMessage, error) {
	if url == "" {
		return nil, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("fetch %s: body is not valid JSON", url)
	}
	return body, nil
}
