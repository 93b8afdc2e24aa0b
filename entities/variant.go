// Package entities holds the types shared by the retrieval pipeline: records read
// from the document store, filter conditions, collection variants and the
// public response shapes.
package entities

import (
	"fmt"
	"strings"
)

// Variant identifies one of the document collections served by the API.
type Variant string

const (
	ClinicalNote  Variant = "CUBEC_NOTE"
	PackageInsert Variant = "PACKAGE_INSERT"
	Guideline     Variant = "GUIDELINE"
)

// AllVariants lists the supported variants in display order.
func AllVariants() []Variant {
	return []Variant{ClinicalNote, PackageInsert, Guideline}
}

// ParseVariant accepts a variant key case-insensitively.
// An empty key selects ClinicalNote.
func ParseVariant(s string) (Variant, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	if key == "" {
		return ClinicalNote, nil
	}
	for _, v := range AllVariants() {
		if string(v) == key {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Catalog maps every variant to its backing collection name.
type Catalog map[Variant]string

// Validate checks that every variant maps to exactly one non-empty, distinct collection.
func (c Catalog) Validate() error {
	seen := make(map[string]Variant, len(c))
	for _, v := range AllVariants() {
		name, ok := c[v]
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("no collection configured for %s", v)
		}
		if other, dup := seen[name]; dup {
			return fmt.Errorf("collection %q is mapped by both %s and %s", name, other, v)
		}
		seen[name] = v
	}
	return nil
}

// Resolve returns the backing collection name for v.
func (c Catalog) Resolve(v Variant) (string, error) {
	name, ok := c[v]
	if !ok || name == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
	return name, nil
}

// CollectionEntry is one row of the GET /collections listing.
type CollectionEntry struct {
	Key  Variant `json:"key"`
	Name string  `json:"name"`
}

// Entries lists the catalog in variant order.
func (c Catalog) Entries() []CollectionEntry {
	entries := make([]CollectionEntry, 0, len(c))
	for _, v := range AllVariants() {
		if name, ok := c[v]; ok {
			entries = append(entries, CollectionEntry{Key: v, Name: name})
		}
	}
	return entries
}
