// Package catalog holds pure helpers over menu data used by the restaurant
// page: filters, search and category grouping.
package catalog

import (
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

const UncategorisedLabel = "Other"

type Group struct {
	Category string             `json:"category"`
	Items    []clients.MenuItem `json:"items"`
}

func FilterVeg(items []clients.MenuItem) []clients.MenuItem {
	return filter(items, func(it clients.MenuItem) bool { return it.IsVeg })
}

func Bestsellers(items []clients.MenuItem) []clients.MenuItem {
	return filter(items, func(it clients.MenuItem) bool { return it.IsBestseller })
}

// Search keeps items whose name or description contains query, ignoring
// case. An empty query keeps everything.
func Search(items []clients.MenuItem, query string) []clients.MenuItem {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	return filter(items, func(it clients.MenuItem) bool {
		return strings.Contains(strings.ToLower(it.Name), q) ||
			strings.Contains(strings.ToLower(it.Description), q)
	})
}

// GroupByCategory groups items by category name in order of first
// appearance. Items without a category go last, under UncategorisedLabel.
func GroupByCategory(items []clients.MenuItem) []Group {
	var groups []Group
	index := map[string]int{}
	var other []clients.MenuItem

	for _, it := range items {
		name := strings.TrimSpace(it.CategoryName)
		if name == "" {
			other = append(other, it)
			continue
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Category: name})
		}
		groups[i].Items = append(groups[i].Items, it)
	}

	if len(other) > 0 {
		groups = append(groups, Group{Category: UncategorisedLabel, Items: other})
	}
	return groups
}

func filter(items []clients.MenuItem, keep func(clients.MenuItem) bool) []clients.MenuItem {
	out := make([]clients.MenuItem, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
