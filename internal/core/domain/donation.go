package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type ItemType string

const (
	ItemTypeFood    ItemType = "food"
	ItemTypeClothes ItemType = "clothes"
	ItemTypeBooks   ItemType = "books"
	ItemTypeHygiene ItemType = "hygiene"
	ItemTypeDevices ItemType = "devices"
)

func ItemTypes() []ItemType {
	return []ItemType{ItemTypeFood, ItemTypeClothes, ItemTypeBooks, ItemTypeHygiene, ItemTypeDevices}
}

func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeFood, ItemTypeClothes, ItemTypeBooks, ItemTypeHygiene, ItemTypeDevices:
		return true
	default:
		return false
	}
}

type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusDelivered DonationStatus = "delivered"
)

const (
	DefaultUnit    = "items"
	expiryLayout   = "2006-01-02"
	maxScoreValue  = 100
	maxTextLength  = 2000
	maxShortLength = 200
)

type Donation struct {
	ID                   string                `json:"id"`
	DonorID              string                `json:"donor_id"`
	ItemType             ItemType              `json:"item_type"`
	ItemName             string                `json:"item_name"`
	Quantity             int                   `json:"quantity"`
	Unit                 string                `json:"unit"`
	Description          string                `json:"description"`
	PickupLocation       string                `json:"pickup_location"`
	ExpiryDate           *time.Time            `json:"expiry_date,omitempty"`
	ImageURL             *string               `json:"image_url"`
	ImageKey             *string               `json:"-"`
	ClassificationResult *ClassificationResult `json:"classification_result,omitempty"`
	FreshnessScore       *float64              `json:"freshness_score,omitempty"`
	ConditionScore       *float64              `json:"condition_score,omitempty"`
	Status               DonationStatus        `json:"status"`
	CreatedAt            time.Time             `json:"created_at"`
}

// ClassificationResult is the remote classifier's verdict for one image.
type ClassificationResult struct {
	Classification string   `json:"classification"`
	FreshnessScore *float64 `json:"freshness_score,omitempty"`
	ConditionScore *float64 `json:"condition_score,omitempty"`
	Confidence     float64  `json:"confidence"`
}

// ConfidencePercent rounds the 0..1 confidence to a whole percentage.
func (r ClassificationResult) ConfidencePercent() int {
	return int(math.Round(r.Confidence * 100))
}

func (r ClassificationResult) Validate() error {
	if strings.TrimSpace(r.Classification) == "" {
		return WrapError(ErrInvalidInput, "validate classification", errors.New("classification label is empty"))
	}
	if math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 1 {
		return WrapError(ErrInvalidInput, "validate classification", fmt.Errorf("confidence %v out of range [0,1]", r.Confidence))
	}
	for name, score := range map[string]*float64{"freshness_score": r.FreshnessScore, "condition_score": r.ConditionScore} {
		if score == nil {
			continue
		}
		if math.IsNaN(*score) || *score < 0 || *score > maxScoreValue {
			return WrapError(ErrInvalidInput, "validate classification", fmt.Errorf("%s %v out of range [0,100]", name, *score))
		}
	}
	return nil
}

// DonationForm carries the user-editable donation fields as entered.
type DonationForm struct {
	ItemType       string `json:"item_type"`
	ItemName       string `json:"item_name"`
	Quantity       string `json:"quantity"`
	Unit           string `json:"unit"`
	Description    string `json:"description"`
	PickupLocation string `json:"pickup_location"`
	ExpiryDate     string `json:"expiry_date"`
}

// ApplyClassification merges a classifier label into the form. A value the
// user already picked is kept; unknown labels are ignored.
func (f DonationForm) ApplyClassification(result ClassificationResult) DonationForm {
	if strings.TrimSpace(f.ItemType) != "" {
		return f
	}
	label := ItemType(strings.ToLower(strings.TrimSpace(result.Classification)))
	if label.Valid() {
		f.ItemType = string(label)
	}
	return f
}

// DonationInput is a validated form, ready to persist.
type DonationInput struct {
	ItemType       ItemType
	ItemName       string
	Quantity       int
	Unit           string
	Description    string
	PickupLocation string
	ExpiryDate     *time.Time
}

func (f DonationForm) Validate() (DonationInput, error) {
	const op = "validate donation form"

	itemType := ItemType(strings.ToLower(strings.TrimSpace(f.ItemType)))
	if !itemType.Valid() {
		return DonationInput{}, WrapError(ErrInvalidInput, op, fmt.Errorf("unknown item_type %q", f.ItemType))
	}

	itemName := strings.TrimSpace(f.ItemName)
	if itemName == "" {
		return DonationInput{}, WrapError(ErrInvalidInput, op, errors.New("item_name is required"))
	}
	if len(itemName) > maxShortLength {
		return DonationInput{}, WrapError(ErrInvalidInput, op, errors.New("item_name is too long"))
	}

	quantity, err := ParseQuantity(f.Quantity)
	if err != nil {
		return DonationInput{}, WrapError(ErrInvalidInput, op, err)
	}

	unit := strings.TrimSpace(f.Unit)
	if unit == "" {
		unit = DefaultUnit
	}
	if len(unit) > maxShortLength {
		return DonationInput{}, WrapError(ErrInvalidInput, op, errors.New("unit is too long"))
	}

	pickup := strings.TrimSpace(f.PickupLocation)
	if pickup == "" {
		return DonationInput{}, WrapError(ErrInvalidInput, op, errors.New("pickup_location is required"))
	}

	description := strings.TrimSpace(f.Description)
	if len(description) > maxTextLength {
		return DonationInput{}, WrapError(ErrInvalidInput, op, errors.New("description is too long"))
	}

	var expiry *time.Time
	if raw := strings.TrimSpace(f.ExpiryDate); raw != "" {
		parsed, err := time.Parse(expiryLayout, raw)
		if err != nil {
			return DonationInput{}, WrapError(ErrInvalidInput, op, fmt.Errorf("expiry_date must be YYYY-MM-DD: %w", err))
		}
		expiry = &parsed
	}

	return DonationInput{
		ItemType:       itemType,
		ItemName:       itemName,
		Quantity:       quantity,
		Unit:           unit,
		Description:    description,
		PickupLocation: pickup,
		ExpiryDate:     expiry,
	}, nil
}

// ParseQuantity accepts a positive base-10 integer.
func ParseQuantity(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, errors.New("quantity is required")
	}
	n, err := strconv.ParseInt(trimmed, 10, 32)
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("quantity %q is too large", raw)
	}
	if err != nil {
		return 0, fmt.Errorf("quantity %q is not a whole number", raw)
	}
	if n <= 0 {
		return 0, fmt.Errorf("quantity must be positive, got %d", n)
	}
	return int(n), nil
}

type DonationStats struct {
	Total     int `json:"total"`
	Delivered int `json:"delivered"`
	Pending   int `json:"pending"`
}

func SummarizeDonations(donations []Donation) DonationStats {
	stats := DonationStats{Total: len(donations)}
	for _, d := range donations {
		switch d.Status {
		case DonationStatusDelivered:
			stats.Delivered++
		case DonationStatusPending:
			stats.Pending++
		}
	}
	return stats
}
