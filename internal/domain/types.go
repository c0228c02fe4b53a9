package domain

// IntentKind identifies what the user wants done with the list.
type IntentKind string

const (
	IntentAddItem    IntentKind = "add_item"
	IntentRemoveItem IntentKind = "remove_item"
	IntentSearchItem IntentKind = "search_item"
	IntentUnknown    IntentKind = "unknown"
)

// ListEntry is one line of the shopping list. At most one entry exists per
// case-insensitive item name.
type ListEntry struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
	Category string `json:"category"`
}

// CatalogEntry is an immutable product record loaded at startup.
type CatalogEntry struct {
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Seasonal bool    `json:"seasonal"`
}

// Filters narrows a catalog search.
type Filters struct {
	Brand    string   `json:"brand,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
}

// Intent is the structured form of a single utterance. It is built per
// request and consumed immediately; nothing stores it.
type Intent struct {
	Kind     IntentKind
	Item     string
	Quantity int
	Category string
	Filters  *Filters
	Speech   string
}
