package core

import (
	"fmt"
	"strings"
)

// Category is one fixed entry of the registry.
type Category struct {
	Key   string
	Label string
}

// Categories is the fixed, ordered category registry. Free-text categories
// are entered through the custom flow and never checked against it.
var Categories = []Category{
	{Key: "🍜", Label: "Ăn uống"},
	{Key: "🍽️", Label: "Ăn ngoài"},
	{Key: "🎉", Label: "Vui chơi"},
	{Key: "🛍️", Label: "Mua đồ"},
	{Key: "📦", Label: "Đồ dùng khác"},
}

// CategoryLabel returns the label registered under key.
func CategoryLabel(key string) (string, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c.Label, true
		}
	}
	return "", false
}

// ResolveCategory returns the label of a registry key.
func ResolveCategory(key string) (string, error) {
	label, ok := CategoryLabel(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	return label, nil
}

// CustomCategory trims free text entered as a category. Any non-empty text
// is accepted.
func CustomCategory(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyCategory
	}
	return text, nil
}
