// Package catalog serves product listings keyed by the resolved
// listing config. Two contracts matter here: a page refetch is
// triggered by config value changes only, and the previously served
// page keeps being returned when a fetch for a new config fails
// (no flash-to-empty). Out-of-order responses are resolved by
// sequence token: the last issued fetch wins the installed page.
package catalog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"shopfront/internal/cache"
	"shopfront/internal/models"
	"shopfront/internal/query"
)

// API is the slice of the backend client the catalog needs.
type API interface {
	GetProducts(ctx context.Context, cfg query.ListingConfig) (models.ProductList, error)
	GetHomeProducts(ctx context.Context, cfg query.ListingConfig) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	GetCategories(ctx context.Context) ([]models.Category, error)
}

type Store struct {
	api    API
	cache  cache.Cache
	logger *zap.Logger
	ttl    time.Duration

	mu         sync.Mutex
	seq        uint64 // last issued fetch token
	appliedSeq uint64 // token of the currently installed page
	cfg        query.ListingConfig
	list       models.ProductList
	valid      bool
	fetchedAt  time.Time
}

func New(api API, c cache.Cache, logger *zap.Logger, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Store{api: api, cache: c, logger: logger, ttl: ttl}
}

// Products returns the listing page for cfg. A fresh page for the same
// config is served from the installed snapshot; a different config
// triggers a fetch. On fetch failure the previous page is kept.
func (s *Store) Products(ctx context.Context, cfg query.ListingConfig) (models.ProductList, error) {
	s.mu.Lock()
	if s.valid && cfg.Equal(s.cfg) && time.Since(s.fetchedAt) < s.ttl {
		list := s.list
		s.mu.Unlock()
		return list, nil
	}
	s.seq++
	token := s.seq
	prev, prevOK := s.list, s.valid
	s.mu.Unlock()

	list, err := s.fetchProducts(ctx, cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if prevOK {
			s.logger.Warn("product fetch failed, keeping previous page",
				zap.Error(err), zap.String("query", cfg.Values().Encode()))
			return prev, nil
		}
		return models.ProductList{}, err
	}
	if token > s.appliedSeq {
		s.appliedSeq = token
		s.cfg = cfg
		s.list = list
		s.valid = true
		s.fetchedAt = time.Now()
	}
	// A stale response still answers its own caller, it just does not
	// become the installed page.
	return list, nil
}

func (s *Store) fetchProducts(ctx context.Context, cfg query.ListingConfig) (models.ProductList, error) {
	key := "products?" + cfg.Values().Encode()
	if raw, ok := s.cache.Get(ctx, key); ok {
		var list models.ProductList
		if err := json.Unmarshal(raw, &list); err == nil {
			return list, nil
		}
	}

	list, err := s.api.GetProducts(ctx, cfg)
	if err != nil {
		return models.ProductList{}, err
	}
	if raw, err := json.Marshal(list); err == nil {
		s.cache.Set(ctx, key, raw, s.ttl)
	}
	return list, nil
}

// HomeProducts serves the home page strip through the cache.
func (s *Store) HomeProducts(ctx context.Context, cfg query.ListingConfig) ([]models.Product, error) {
	key := "home?" + cfg.Values().Encode()
	if raw, ok := s.cache.Get(ctx, key); ok {
		var products []models.Product
		if err := json.Unmarshal(raw, &products); err == nil {
			return products, nil
		}
	}

	products, err := s.api.GetHomeProducts(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(products); err == nil {
		s.cache.Set(ctx, key, raw, s.ttl)
	}
	return products, nil
}

// Product fetches one product by ID through the cache.
func (s *Store) Product(ctx context.Context, id string) (models.Product, error) {
	key := "product:" + id
	if raw, ok := s.cache.Get(ctx, key); ok {
		var product models.Product
		if err := json.Unmarshal(raw, &product); err == nil {
			return product, nil
		}
	}

	product, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if raw, err := json.Marshal(product); err == nil {
		s.cache.Set(ctx, key, raw, s.ttl)
	}
	return product, nil
}

// Categories is fetched independently of the listing config.
func (s *Store) Categories(ctx context.Context) ([]models.Category, error) {
	if raw, ok := s.cache.Get(ctx, "categories"); ok {
		var categories []models.Category
		if err := json.Unmarshal(raw, &categories); err == nil {
			return categories, nil
		}
	}

	categories, err := s.api.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(categories); err == nil {
		s.cache.Set(ctx, "categories", raw, s.ttl)
	}
	return categories, nil
}
