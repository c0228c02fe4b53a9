package suggest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pbaille/grocer/assets"
	"github.com/pbaille/grocer/internal/domain"
	"github.com/pbaille/grocer/internal/pkg/logger"
)

// Substitute pairs a keyword with ordered replacement products.
type Substitute struct {
	Match        string   `yaml:"match"`
	Alternatives []string `yaml:"alternatives"`
}

// LoadSubstitutes parses a substitution table from YAML. The table is an
// ordered list, so prompt emission order follows declaration order.
func LoadSubstitutes(data []byte) ([]Substitute, error) {
	var subs []Substitute
	if err := yaml.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("parse substitutes: %w", err)
	}
	return subs, nil
}

// LoadSubstitutesFile reads the table from path, or returns the embedded
// default table when path is empty.
func LoadSubstitutesFile(path string) ([]Substitute, error) {
	data := assets.DefaultSubstitutesYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read substitutes: %w", err)
		}
	}
	return LoadSubstitutes(data)
}

// HistoryReader exposes the most requested item names.
type HistoryReader interface {
	TopN(n int) []string
}

// SeasonalSampler exposes seasonal catalog entries.
type SeasonalSampler interface {
	SeasonalSample(n int) ([]domain.CatalogEntry, error)
}

// ListReader exposes the most recently added list entry.
type ListReader interface {
	Last() (domain.ListEntry, bool)
}

// Engine derives human-readable prompts from usage history, the catalog,
// and the current list. Every call recomputes from scratch; nothing is
// cached, so two calls without intervening mutations return the same
// sequence.
type Engine struct {
	History     HistoryReader
	Catalog     SeasonalSampler
	List        ListReader
	Substitutes []Substitute
	Log         *logger.Logger
}

// Suggestions returns the current prompt sequence: up to three frequency
// prompts, up to two seasonal prompts, then one substitute prompt per table
// key contained in the latest entry's name.
func (e *Engine) Suggestions() []string {
	out := []string{}

	for _, item := range e.History.TopN(3) {
		out = append(out, fmt.Sprintf("You often buy %s. Want to add it?", item))
	}

	seasonal, err := e.Catalog.SeasonalSample(2)
	if err != nil {
		e.Log.Error("seasonal lookup failed", err, nil)
	}
	for _, entry := range seasonal {
		out = append(out, fmt.Sprintf("It's a good season for %s.", entry.Name))
	}

	if last, ok := e.List.Last(); ok {
		base := strings.ToLower(last.Item)
		for _, sub := range e.Substitutes {
			if len(sub.Alternatives) == 0 {
				continue
			}
			if strings.Contains(base, strings.ToLower(sub.Match)) {
				out = append(out, fmt.Sprintf("If %s is unavailable, try %s.", base, sub.Alternatives[0]))
			}
		}
	}

	return out
}
