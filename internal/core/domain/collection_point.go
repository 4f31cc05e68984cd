package domain

import (
	"strings"
	"unicode"
)

type CollectionPointType string

const (
	CollectionPointNGO             CollectionPointType = "ngo"
	CollectionPointCommunityCenter CollectionPointType = "community_center"
	CollectionPointDropOff         CollectionPointType = "drop_off_point"
)

type CollectionPoint struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Type           string   `json:"type" yaml:"type"`
	Address        string   `json:"address" yaml:"address"`
	Latitude       float64  `json:"latitude" yaml:"latitude"`
	Longitude      float64  `json:"longitude" yaml:"longitude"`
	ContactPhone   *string  `json:"contact_phone" yaml:"contact_phone"`
	ContactEmail   *string  `json:"contact_email" yaml:"contact_email"`
	OperatingHours *string  `json:"operating_hours" yaml:"operating_hours"`
	AcceptedItems  []string `json:"accepted_items" yaml:"accepted_items"`
	Description    *string  `json:"description" yaml:"description"`
	IsActive       bool     `json:"is_active" yaml:"is_active"`
}

const DefaultTypeColor = "muted"

// TypeColor maps a collection point type to its badge colour. Unknown
// values get DefaultTypeColor.
func TypeColor(pointType string) string {
	switch CollectionPointType(pointType) {
	case CollectionPointNGO:
		return "primary"
	case CollectionPointCommunityCenter:
		return "secondary"
	case CollectionPointDropOff:
		return "accent"
	default:
		return DefaultTypeColor
	}
}

// TypeLabel turns "drop_off_point" into "Drop Off Point".
func TypeLabel(pointType string) string {
	words := strings.FieldsFunc(pointType, func(r rune) bool {
		return r == '_' || unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return "Unknown"
	}
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
