package assets

import (
	_ "embed"
)

// DefaultCatalogYAML contains the embedded default product catalog.
//
//go:embed data/catalog.yaml
var DefaultCatalogYAML []byte

// DefaultSubstitutesYAML contains the embedded default substitution table.
//
//go:embed data/substitutes.yaml
var DefaultSubstitutesYAML []byte
