package types

import (
	"fmt"
	"strings"
)

// Category is the closed set of risk categories
type Category string

const (
	CategoryTechnical   Category = "technical"
	CategoryOperational Category = "operational"
	CategoryFinancial   Category = "financial"
	CategoryStrategic   Category = "strategic"
	CategoryCompliance  Category = "compliance"
	CategorySecurity    Category = "security"
	CategorySchedule    Category = "schedule"
	CategoryResource    Category = "resource"
	CategoryExternal    Category = "external"
	CategoryOther       Category = "other"
)

// AllCategories returns all valid categories
func AllCategories() []Category {
	return []Category{
		CategoryTechnical,
		CategoryOperational,
		CategoryFinancial,
		CategoryStrategic,
		CategoryCompliance,
		CategorySecurity,
		CategorySchedule,
		CategoryResource,
		CategoryExternal,
		CategoryOther,
	}
}

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	for _, v := range AllCategories() {
		if c == v {
			return true
		}
	}
	return false
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// ParseCategory parses a string into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category: %s", s)
	}
	return c, nil
}

// NormalizeCategory maps free text such as "Security Risk" or "FINANCIAL" to
// a known category, falling back to CategoryOther.
func NormalizeCategory(s string) Category {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllCategories() {
		if v == string(c) {
			return c
		}
	}
	for _, c := range AllCategories() {
		if c != CategoryOther && strings.Contains(v, string(c)) {
			return c
		}
	}
	return CategoryOther
}
