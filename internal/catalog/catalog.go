// Package catalog maps symbology codes reported by capture devices to
// display names. A Catalog is immutable after construction and safe for
// concurrent use without locking.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"capture-backend/internal/models"

	"gorm.io/gorm"
)

// UnknownCode is the code devices report when the decoder could not classify a symbology.
const UnknownCode = -1

// UnknownName is stored for any code the catalog does not know.
const UnknownName = "UNKNOWN"

type Entry struct {
	Code int    `json:"id"`
	Name string `json:"name"`
}

type Catalog struct {
	names map[int]string
}

// New copies names, so later changes to the map do not leak into the catalog.
func New(names map[int]string) *Catalog {
	c := &Catalog{names: make(map[int]string, len(names))}
	for code, name := range names {
		c.names[code] = name
	}
	return c
}

// Default returns the catalog of symbologies known to the capture client.
func Default() *Catalog {
	return New(defaultNames)
}

// Name resolves code, falling back to UnknownName.
func (c *Catalog) Name(code int) string {
	if name, ok := c.names[code]; ok {
		return name
	}
	return UnknownName
}

// Lookup reports whether code is a known symbology.
func (c *Catalog) Lookup(code int) (string, bool) {
	name, ok := c.names[code]
	return name, ok
}

// Entries lists the catalog ordered by code.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.names))
	for code, name := range c.names {
		out = append(out, Entry{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Load seeds the symbologies table with the defaults when it is empty and
// then reads it back. The table is the editable source; the returned
// catalog is a snapshot for the lifetime of the process.
func Load(ctx context.Context, db *gorm.DB) (*Catalog, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Symbology{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count symbologies: %w", err)
	}

	if count == 0 {
		rows := make([]models.Symbology, 0, len(defaultNames))
		for _, e := range Default().Entries() {
			rows = append(rows, models.Symbology{ID: e.Code, Name: e.Name})
		}
		if err := db.WithContext(ctx).Create(&rows).Error; err != nil {
			return nil, fmt.Errorf("seed symbologies: %w", err)
		}
	}

	var rows []models.Symbology
	if err := db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load symbologies: %w", err)
	}

	names := make(map[int]string, len(rows))
	for _, r := range rows {
		names[r.ID] = r.Name
	}
	return &Catalog{names: names}, nil
}
