// Package errcatalog resolves symbolic outcome names into HTTP statuses and
// localized messages. The catalog is embedded at build time; the engine only
// ever emits symbolic names, resolution happens at the route layer.
package errcatalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed catalog.json
var rawCatalog []byte

type localized struct {
	PrettyName  string `json:"PrettyName"`
	Description string `json:"Description"`
}

type entry struct {
	ID         int                  `json:"id"`
	Name       string               `json:"Name"`
	HTTPReturn int                  `json:"HttpReturn"`
	Data       map[string]localized `json:"Data"`
}

// Resolved is one catalog entry narrowed to a single locale.
type Resolved struct {
	Code        int
	HTTPStatus  int
	PrettyName  string
	Description string
}

// Catalog holds the parsed outcome catalog.
type Catalog struct {
	entries       map[string]entry
	defaultLocale string
}

// Load parses the embedded catalog. The catalog ships inside the binary, so a
// parse failure is a build defect and reported as an error for main to treat
// as fatal.
func Load(defaultLocale string) (*Catalog, error) {
	var parsed []entry
	if err := json.Unmarshal(rawCatalog, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse error catalog: %w", err)
	}

	entries := make(map[string]entry, len(parsed))
	for _, e := range parsed {
		entries[e.Name] = e
	}

	for _, name := range []string{"Success", "UnknownError"} {
		e, ok := entries[name]
		if !ok {
			return nil, fmt.Errorf("error catalog is missing the %s entry", name)
		}
		if _, ok := e.Data[defaultLocale]; !ok {
			return nil, fmt.Errorf("error catalog entry %s has no %s localization", name, defaultLocale)
		}
	}

	return &Catalog{entries: entries, defaultLocale: defaultLocale}, nil
}

// Resolve returns the entry for name in the requested locale. An unknown name
// resolves to UnknownError, an unknown locale falls back to the default.
func (c *Catalog) Resolve(name, locale string) Resolved {
	e, ok := c.entries[name]
	if !ok {
		e = c.entries["UnknownError"]
	}

	data, ok := e.Data[locale]
	if !ok {
		data = e.Data[c.defaultLocale]
	}

	return Resolved{
		Code:        e.ID,
		HTTPStatus:  e.HTTPReturn,
		PrettyName:  data.PrettyName,
		Description: data.Description,
	}
}
