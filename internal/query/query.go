// Package query derives the canonical product-listing configuration
// from a URL query string. Only whitelisted keys survive; values stay
// strings and are parsed at point of use.
package query

import (
	"net/url"

	"shopfront/internal/models"
)

// ListingConfig is the typed view of the recognized listing parameters.
// A zero field means the parameter is absent.
type ListingConfig struct {
	Page         string
	Limit        string
	SortBy       string
	Order        string
	Name         string
	Category     string
	PriceMin     string
	PriceMax     string
	RatingFilter string
}

const (
	defaultPage  = "1"
	defaultLimit = "20"
)

// Resolve intersects the raw query values with the whitelist. Unknown
// keys and empty values are dropped; page and limit get their defaults
// so that semantically equal query strings resolve to equal configs.
func Resolve(values url.Values) ListingConfig {
	pick := func(key string) string { return values.Get(key) }

	cfg := ListingConfig{
		Page:         pick("page"),
		Limit:        pick("limit"),
		SortBy:       pick("sort_by"),
		Order:        pick("order"),
		Name:         pick("name"),
		Category:     pick("category"),
		PriceMin:     pick("price_min"),
		PriceMax:     pick("price_max"),
		RatingFilter: pick("rating_filter"),
	}
	if cfg.Page == "" {
		cfg.Page = defaultPage
	}
	if cfg.Limit == "" {
		cfg.Limit = defaultLimit
	}
	return cfg
}

// Values round-trips the config back into a query string for building
// pagination and filter links. Resolve(cfg.Values()) == cfg holds.
func (c ListingConfig) Values() url.Values {
	values := url.Values{}
	set := func(key, v string) {
		if v != "" {
			values.Set(key, v)
		}
	}
	set("page", c.Page)
	set("limit", c.Limit)
	set("sort_by", c.SortBy)
	set("order", c.Order)
	set("name", c.Name)
	set("category", c.Category)
	set("price_min", c.PriceMin)
	set("price_max", c.PriceMax)
	set("rating_filter", c.RatingFilter)
	return values
}

// Equal is key-wise equality; it keys catalog refetches.
func (c ListingConfig) Equal(other ListingConfig) bool {
	return c == other
}

// SortByOrDefault mirrors the listing UI: an unset sort means newest
// first.
func (c ListingConfig) SortByOrDefault() string {
	if c.SortBy == "" {
		return models.SortByCreatedAt
	}
	return c.SortBy
}

// WithSort selects a non-price sort axis. Order only applies to price
// sorting, so it is dropped here.
func (c ListingConfig) WithSort(sortBy string) ListingConfig {
	c.SortBy = sortBy
	c.Order = ""
	c.Page = defaultPage
	return c
}

// WithPriceOrder sorts by price in the given direction.
func (c ListingConfig) WithPriceOrder(order string) ListingConfig {
	c.SortBy = models.SortByPrice
	c.Order = order
	c.Page = defaultPage
	return c
}

// WithoutFilters clears every filter the aside panel owns.
func (c ListingConfig) WithoutFilters() ListingConfig {
	c.Category = ""
	c.PriceMin = ""
	c.PriceMax = ""
	c.RatingFilter = ""
	c.Page = defaultPage
	return c
}

func (c ListingConfig) WithPage(page string) ListingConfig {
	c.Page = page
	return c
}
