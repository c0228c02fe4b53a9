package command

import (
	"github.com/pbaille/grocer/internal/domain"
	"github.com/pbaille/grocer/internal/pkg/logger"
)

// ListWriter is the slice of list state the dispatcher mutates.
type ListWriter interface {
	Add(item string, quantity int, category string)
	Remove(item string)
}

// Searcher is the catalog lookup the dispatcher queries.
type Searcher interface {
	Search(query, brand string, maxPrice *float64) ([]domain.CatalogEntry, error)
}

// Suggester recomputes prompts after a mutation.
type Suggester interface {
	Suggestions() []string
}

// Result carries whatever a dispatched intent produced. Speech is always
// set from the intent; Results and Suggestions depend on the kind.
type Result struct {
	Speech      string
	Results     []domain.CatalogEntry
	Suggestions []string
}

// Dispatcher applies resolved intents to the shared state.
type Dispatcher struct {
	List    ListWriter
	Catalog Searcher
	Suggest Suggester
	Log     *logger.Logger
}

// Dispatch routes an intent to a list mutation or a catalog query. It never
// fails on a well-formed intent: malformed fields are coerced, an unknown
// kind or an empty item leaves all state untouched, and the speech line is
// surfaced either way.
func (d *Dispatcher) Dispatch(intent domain.Intent) Result {
	res := Result{Speech: intent.Speech}

	switch intent.Kind {
	case domain.IntentAddItem:
		if intent.Item == "" {
			return res
		}
		quantity := intent.Quantity
		if quantity < 1 {
			quantity = 1
		}
		d.List.Add(intent.Item, quantity, intent.Category)
		res.Suggestions = d.Suggest.Suggestions()

	case domain.IntentRemoveItem:
		if intent.Item == "" {
			return res
		}
		d.List.Remove(intent.Item)
		res.Suggestions = d.Suggest.Suggestions()

	case domain.IntentSearchItem:
		var brand string
		var maxPrice *float64
		if intent.Filters != nil {
			brand = intent.Filters.Brand
			maxPrice = intent.Filters.MaxPrice
		}
		results, err := d.Catalog.Search(intent.Item, brand, maxPrice)
		if err != nil {
			d.Log.Error("catalog search failed", err, map[string]interface{}{"query": intent.Item})
			results = []domain.CatalogEntry{}
		}
		res.Results = results
	}

	return res
}
