package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Category is the closed set of project kinds shown on the site.
type Category string

const (
	CategoryExterior Category = "exterior"
	CategoryInterior Category = "interior"
	CategoryProduct  Category = "product"
)

// DefaultCategory is used when a form leaves the category blank.
const DefaultCategory = CategoryExterior

var categories = []Category{CategoryExterior, CategoryInterior, CategoryProduct}

// ParseCategory maps user input onto a Category. Empty input yields DefaultCategory.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultCategory, nil
	}
	for _, c := range categories {
		if string(c) == s {
			return c, nil
		}
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return "", fmt.Errorf("unknown category %q (expected one of %s)", s, strings.Join(names, ", "))
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer.
func (c Category) Value() (driver.Value, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %q", string(c))
	}
	return string(c), nil
}

// Scan implements sql.Scanner.
func (c *Category) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*c = DefaultCategory
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Category", src)
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
