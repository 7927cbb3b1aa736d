package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Product represents a single shopping result normalized from a raw
// catalog provider record. Immutable once constructed.
type Product struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Price        float64  `json:"price"`
	DisplayPrice string   `json:"price_str"`
	Link         string   `json:"link"`
	ImageURL     string   `json:"imageUrl"`
	Rating       *float64 `json:"rating,omitempty"`
	RatingCount  int      `json:"ratingCount"`
	Delivery     *string  `json:"delivery,omitempty"`
	Source       string   `json:"source"`
}

// SerperProduct is the raw shopping result shape returned by the Serper API.
type SerperProduct struct {
	Position    int      `json:"position"`
	Title       string   `json:"title"`
	Price       string   `json:"price"`
	Link        string   `json:"link"`
	ImageURL    string   `json:"imageUrl"`
	Rating      *float64 `json:"rating,omitempty"`
	RatingCount int      `json:"ratingCount"`
	Delivery    *string  `json:"delivery,omitempty"`
	Source      string   `json:"source"`
}

var priceNumberRe = regexp.MustCompile(`\d+\.?\d*`)

// ProductFromSerper builds a Product from a raw Serper shopping result.
// Price strings that cannot be parsed keep a 0 numeric price with a
// "Contact for price" display fallback.
func ProductFromSerper(raw SerperProduct) Product {
	price, displayPrice := parsePrice(raw.Price)

	title := raw.Title
	if title == "" {
		title = "No title"
	}
	link := raw.Link
	if link == "" {
		link = "#"
	}
	source := raw.Source
	if source == "" {
		source = "Unknown store"
	}

	return Product{
		ID:           strconv.Itoa(raw.Position),
		Title:        title,
		Price:        price,
		DisplayPrice: displayPrice,
		Link:         link,
		ImageURL:     raw.ImageURL,
		Rating:       raw.Rating,
		RatingCount:  raw.RatingCount,
		Delivery:     raw.Delivery,
		Source:       source,
	}
}

// parsePrice extracts a numeric price from a provider price string.
// Tries a plain "$1,234.56" parse first, then salvages the first number
// found anywhere in the string.
func parsePrice(raw string) (float64, string) {
	if raw == "" {
		return 0, "Contact for price"
	}

	cleaned := strings.ReplaceAll(strings.ReplaceAll(raw, "$", ""), ",", "")
	if price, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64); err == nil {
		return price, raw
	}

	if match := priceNumberRe.FindString(raw); match != "" {
		if price, err := strconv.ParseFloat(match, 64); err == nil {
			return price, fmt.Sprintf("$%.2f", price)
		}
	}

	return 0, "Contact for price"
}

// HasPrice reports whether the product carries a usable numeric price.
// A zero price means the provider string was unparseable.
func (p Product) HasPrice() bool {
	return p.Price > 0
}
