package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"PocketTrade/service/trade/internal/lock"
)

// RefreshLockKey serializza il download del dataset tra repliche.
const RefreshLockKey = "lock:catalog:refresh"

// Source produce uno snapshot fresco (tipicamente HTTPSource).
type Source interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// Cache conserva lo snapshot tra repliche e riavvii.
type Cache interface {
	Get(ctx context.Context) (Snapshot, bool, error)
	Set(ctx context.Context, snap Snapshot) error
}

// Provider e' cio' che serve all'Holder per ottenere un catalogo.
type Provider interface {
	Load(ctx context.Context) (*Catalog, error)
}

// Loader legge dalla cache e scarica dalla sorgente solo su miss.
// cache e locker sono opzionali.
type Loader struct {
	source Source
	cache  Cache
	locker lock.Manager
	logger *slog.Logger
	wait   time.Duration
}

func NewLoader(logger *slog.Logger, source Source, cache Cache, locker lock.Manager) *Loader {
	return &Loader{source: source, cache: cache, locker: locker, logger: logger, wait: 2 * time.Second}
}

func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	if cat, ok := l.fromCache(ctx); ok {
		return cat, nil
	}

	if l.locker == nil {
		return l.fetch(ctx)
	}

	token, ok, err := l.locker.Acquire(ctx, RefreshLockKey)
	if err != nil {
		l.logger.Warn("lock refresh catalogo non disponibile, download diretto", "error", err)
		return l.fetch(ctx)
	}
	if !ok {
		// Un'altra replica sta scaricando: si attende e si rilegge la cache.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.wait):
		}
		if cat, ok := l.fromCache(ctx); ok {
			return cat, nil
		}
		return l.fetch(ctx)
	}
	defer func() {
		if err := l.locker.Release(context.Background(), RefreshLockKey, token); err != nil {
			l.logger.Warn("errore rilascio lock catalogo", "error", err)
		}
	}()

	return l.fetch(ctx)
}

func (l *Loader) fromCache(ctx context.Context) (*Catalog, bool) {
	if l.cache == nil {
		return nil, false
	}
	snap, ok, err := l.cache.Get(ctx)
	if err != nil {
		l.logger.Warn("errore lettura cache catalogo", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	cat, err := Parse(snap)
	if err != nil {
		l.logger.Warn("snapshot in cache non valido", "error", err)
		return nil, false
	}
	return cat, true
}

func (l *Loader) fetch(ctx context.Context) (*Catalog, error) {
	snap, err := l.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := Parse(snap)
	if err != nil {
		return nil, err
	}
	if l.cache != nil {
		if err := l.cache.Set(ctx, snap); err != nil {
			l.logger.Warn("errore scrittura cache catalogo", "error", err)
		}
	}
	l.logger.Info("catalogo scaricato", "cards", cat.Len())
	return cat, nil
}

// Holder espone l'ultimo catalogo valido a letture concorrenti.
type Holder struct {
	current  atomic.Pointer[Catalog]
	provider Provider
	logger   *slog.Logger
}

func NewHolder(logger *slog.Logger, provider Provider) *Holder {
	return &Holder{provider: provider, logger: logger}
}

// NewStaticHolder avvolge un catalogo gia' pronto (fixture, test).
func NewStaticHolder(cat *Catalog) *Holder {
	h := &Holder{logger: slog.Default()}
	h.current.Store(cat)
	return h
}

// Refresh carica un nuovo snapshot; in caso di errore resta quello precedente.
func (h *Holder) Refresh(ctx context.Context) error {
	if h.provider == nil {
		return errors.New("catalog provider not configured")
	}
	cat, err := h.provider.Load(ctx)
	if err != nil {
		return err
	}
	h.current.Store(cat)
	return nil
}

// Run aggiorna il catalogo a intervalli finche' ctx non viene cancellato.
func (h *Holder) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.Refresh(ctx); err != nil {
				h.logger.Error("refresh catalogo fallito, resta lo snapshot precedente", "error", err)
			}
		}
	}
}

// Current ritorna nil finche' nessun catalogo e' stato caricato.
func (h *Holder) Current() *Catalog {
	return h.current.Load()
}

func (h *Holder) Lookup(id CardID) (Card, error) {
	return h.current.Load().Lookup(id)
}
