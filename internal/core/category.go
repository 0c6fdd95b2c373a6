package core

import "strings"

// ParseAliases splits a comma separated alias field, drops blanks and
// appends the codename and the display name.
func ParseAliases(raw, codename, name string) []string {
	parts := strings.Split(raw, ",")
	aliases := make([]string, 0, len(parts)+2)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		aliases = append(aliases, p)
	}
	return append(aliases, codename, name)
}

// NewCategory builds a Category from its stored row.
func NewCategory(r CategoryRecord) Category {
	return Category{
		Codename:      r.Codename,
		Name:          r.Name,
		IsBaseExpense: r.IsBaseExpense,
		Aliases:       ParseAliases(r.Aliases, r.Codename, r.Name),
	}
}

// Catalog is an immutable, ordered snapshot of the categories.
type Catalog struct {
	categories []Category
}

// NewCatalog keeps the order of records.
func NewCatalog(records []CategoryRecord) *Catalog {
	cats := make([]Category, 0, len(records))
	for _, r := range records {
		cats = append(cats, NewCategory(r))
	}
	return &Catalog{categories: cats}
}

// All returns a copy of the categories in catalog order.
func (c *Catalog) All() []Category {
	return append([]Category(nil), c.categories...)
}

// Resolve finds the category for a lowercased, trimmed text.
//
// Every alias of every category is tested for containment in text and the
// scan never stops early: the last category with a matching alias wins.
// Without any match the "other" category is returned.
func (c *Catalog) Resolve(text string) (Category, error) {
	var (
		found, other       Category
		hasFound, hasOther bool
	)
	for _, cat := range c.categories {
		if cat.Codename == OtherCodename {
			other, hasOther = cat, true
		}
		for _, alias := range cat.Aliases {
			if alias != "" && strings.Contains(text, strings.ToLower(alias)) {
				found, hasFound = cat, true
			}
		}
	}
	if hasFound {
		return found, nil
	}
	if hasOther {
		return other, nil
	}
	return Category{}, ErrNoFallbackCategory
}
