package config

import (
	"fmt"

	"cctvmap/pkg/model"
)

// CategoriesConfig selects the deployment's category set and, optionally, a subset of it.
type CategoriesConfig struct {
	Set string `yaml:"set"` // emergency, commerce

	// Hidden categories start inactive in the filter bar. They remain part of the set.
	Hidden []string `yaml:"hidden,omitempty"`
}

// Resolve returns the ordered categories of the configured set.
func (c *CategoriesConfig) Resolve() ([]model.Category, error) {
	set, err := model.CategorySet(c.Set)
	if err != nil {
		return nil, fmt.Errorf("categories.set: %w", err)
	}
	for _, h := range c.Hidden {
		cat, err := model.ParseCategory(h)
		if err != nil {
			return nil, fmt.Errorf("categories.hidden: %w", err)
		}
		if !cat.In(set) {
			return nil, fmt.Errorf("categories.hidden: %q is not part of set %q", h, c.Set)
		}
	}
	return set, nil
}

// Active returns the categories that start active: the set minus Hidden.
func (c *CategoriesConfig) Active() ([]model.Category, error) {
	set, err := c.Resolve()
	if err != nil {
		return nil, err
	}
	hidden := make(map[model.Category]bool, len(c.Hidden))
	for _, h := range c.Hidden {
		cat, _ := model.ParseCategory(h)
		hidden[cat] = true
	}

	active := make([]model.Category, 0, len(set))
	for _, cat := range set {
		if !hidden[cat] {
			active = append(active, cat)
		}
	}
	return active, nil
}
