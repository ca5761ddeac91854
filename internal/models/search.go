package models

import (
	"fmt"
	"strings"
	"time"
)

// SearchFilters are the normalized hotel search parameters. CheckIn and
// CheckOut are either both set or both nil.
type SearchFilters struct {
	Location string
	CheckIn  *time.Time
	CheckOut *time.Time
	Guests   int
	MinRooms int
	PriceMin *float64
	PriceMax *float64
	Rating   *float64
}

// CacheKey returns a stable key for the filter set, used by the search cache
func (f *SearchFilters) CacheKey() string {
	var sb strings.Builder
	sb.WriteString("search:")
	sb.WriteString(strings.ToLower(f.Location))
	if f.CheckIn != nil && f.CheckOut != nil {
		fmt.Fprintf(&sb, ":%s:%s", f.CheckIn.Format("2006-01-02"), f.CheckOut.Format("2006-01-02"))
	} else {
		sb.WriteString("::")
	}
	fmt.Fprintf(&sb, ":g%d:r%d", f.Guests, f.MinRooms)
	if f.PriceMin != nil {
		fmt.Fprintf(&sb, ":pmin%.2f", *f.PriceMin)
	}
	if f.PriceMax != nil {
		fmt.Fprintf(&sb, ":pmax%.2f", *f.PriceMax)
	}
	if f.Rating != nil {
		fmt.Fprintf(&sb, ":rt%.1f", *f.Rating)
	}
	return sb.String()
}

// HotelSummary is a search result row. AvailableRoomTypes counts distinct
// room types matching the filters, not physical units.
type HotelSummary struct {
	ID                 int64       `json:"id" db:"id"`
	Name               string      `json:"name" db:"name"`
	Location           string      `json:"location" db:"location"`
	Description        NullString  `json:"description,omitempty" db:"description"`
	Rating             NullFloat64 `json:"rating,omitempty" db:"rating"`
	MinPrice           NullFloat64 `json:"min_price,omitempty" db:"min_price"`
	MaxPrice           NullFloat64 `json:"max_price,omitempty" db:"max_price"`
	AvailableRoomTypes int         `json:"available_rooms" db:"available_rooms"`
	Facilities         []string    `json:"facilities"`
}

// SearchResponse is the payload returned by the search endpoint
type SearchResponse struct {
	Hotels []HotelSummary `json:"hotels"`
	Total  int            `json:"total"`
}
