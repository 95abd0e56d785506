package models

import (
	"regexp"
	"strings"
	"time"
)

type Product struct {
	ID                  string    `json:"_id"`
	Name                string    `json:"name"`
	Image               string    `json:"image"`
	Images              []string  `json:"images,omitempty"`
	Description         string    `json:"description,omitempty"`
	Category            Category  `json:"category"`
	Price               int64     `json:"price"`
	PriceBeforeDiscount int64     `json:"price_before_discount"`
	Rating              float64   `json:"rating"`
	Quantity            int       `json:"quantity"`
	Sold                int       `json:"sold"`
	View                int       `json:"view"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type Pagination struct {
	Page     int `json:"page"`
	Limit    int `json:"limit"`
	PageSize int `json:"page_size"`
}

type ProductList struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Sort keys accepted by the backend product listing.
const (
	SortByView      = "view"
	SortByCreatedAt = "createdAt"
	SortBySold      = "sold"
	SortByPrice     = "price"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

var nameIDStrip = regexp.MustCompile(`[!@%^*()+=<>?/,.:;'"&#\[\]~$_` + "`" + `{}|\\]`)

// NameID builds the SEO path segment for a product, e.g.
// "Basic Tee-i-60afb1c56ef5b902180aacb8".
func NameID(name, id string) string {
	clean := nameIDStrip.ReplaceAllString(name, "")
	return strings.ReplaceAll(clean, " ", "-") + "-i-" + id
}

// IDFromNameID recovers the product ID from a NameID segment.
func IDFromNameID(nameID string) string {
	parts := strings.Split(nameID, "-i-")
	return parts[len(parts)-1]
}
