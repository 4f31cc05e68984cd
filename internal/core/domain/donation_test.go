package domain

import (
	"testing"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"10", 10, false},
		{" 7 ", 7, false},
		{"", 0, true},
		{"abc", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
		{"1.5", 0, true},
		{"10kg", 0, true},
		{"2147483647", 2147483647, false},
		{"3000000000", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseQuantity(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseQuantity(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseQuantity(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestValidateFormKeepsQuantityAndUnit(t *testing.T) {
	input, err := DonationForm{
		ItemType:       "food",
		ItemName:       "Fresh Vegetables",
		Quantity:       "10",
		Unit:           "kg",
		PickupLocation: "123 Main St",
	}.Validate()
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if input.Quantity != 10 {
		t.Fatalf("expected quantity 10, got %d", input.Quantity)
	}
	if input.Unit != "kg" {
		t.Fatalf("expected unit kg, got %q", input.Unit)
	}
	if input.ItemType != ItemTypeFood {
		t.Fatalf("expected item type food, got %q", input.ItemType)
	}
	if input.ExpiryDate != nil {
		t.Fatalf("expected no expiry date")
	}
}

func TestValidateFormDefaultsUnit(t *testing.T) {
	input, err := DonationForm{
		ItemType:       "books",
		ItemName:       "Novels",
		Quantity:       "3",
		PickupLocation: "Library",
		ExpiryDate:     "2026-12-01",
	}.Validate()
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if input.Unit != DefaultUnit {
		t.Fatalf("expected default unit, got %q", input.Unit)
	}
	if input.ExpiryDate == nil || input.ExpiryDate.Format("2006-01-02") != "2026-12-01" {
		t.Fatalf("unexpected expiry date: %v", input.ExpiryDate)
	}
}

func TestValidateFormRejectsBadInput(t *testing.T) {
	base := DonationForm{ItemType: "food", ItemName: "Rice", Quantity: "2", PickupLocation: "Home"}
	tests := map[string]func(f *DonationForm){
		"unknown type":    func(f *DonationForm) { f.ItemType = "furniture" },
		"empty type":      func(f *DonationForm) { f.ItemType = "" },
		"missing name":    func(f *DonationForm) { f.ItemName = "  " },
		"nan quantity":    func(f *DonationForm) { f.Quantity = "NaN" },
		"zero quantity":   func(f *DonationForm) { f.Quantity = "0" },
		"missing pickup":  func(f *DonationForm) { f.PickupLocation = "" },
		"bad expiry date": func(f *DonationForm) { f.ExpiryDate = "01/12/2026" },
	}

	for name, mutate := range tests {
		form := base
		mutate(&form)
		_, err := form.Validate()
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		if !IsKind(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestApplyClassificationFillsEmptyItemType(t *testing.T) {
	form := DonationForm{ItemName: "Apples"}
	merged := form.ApplyClassification(ClassificationResult{Classification: "food", Confidence: 0.92})
	if merged.ItemType != "food" {
		t.Fatalf("expected item type food, got %q", merged.ItemType)
	}
	if merged.ItemName != "Apples" {
		t.Fatalf("expected other fields untouched, got %+v", merged)
	}
}

func TestApplyClassificationKeepsUserChoice(t *testing.T) {
	form := DonationForm{ItemType: "clothes"}
	merged := form.ApplyClassification(ClassificationResult{Classification: "food", Confidence: 0.99})
	if merged.ItemType != "clothes" {
		t.Fatalf("expected user choice to survive, got %q", merged.ItemType)
	}
}

func TestApplyClassificationIgnoresUnknownLabel(t *testing.T) {
	merged := DonationForm{}.ApplyClassification(ClassificationResult{Classification: "furniture", Confidence: 0.5})
	if merged.ItemType != "" {
		t.Fatalf("expected empty item type, got %q", merged.ItemType)
	}
}

func TestConfidencePercent(t *testing.T) {
	tests := []struct {
		confidence float64
		want       int
	}{
		{0.92, 92},
		{0.916, 92},
		{0.004, 0},
		{0, 0},
		{1, 100},
	}
	for _, tt := range tests {
		got := ClassificationResult{Confidence: tt.confidence}.ConfidencePercent()
		if got != tt.want {
			t.Errorf("ConfidencePercent(%v) = %d, want %d", tt.confidence, got, tt.want)
		}
	}
}

func TestClassificationValidate(t *testing.T) {
	bad := 140.0
	if err := (ClassificationResult{Classification: "food", Confidence: 1.2}).Validate(); err == nil {
		t.Errorf("expected error for confidence above 1")
	}
	if err := (ClassificationResult{Classification: "food", Confidence: 0.5, FreshnessScore: &bad}).Validate(); err == nil {
		t.Errorf("expected error for freshness above 100")
	}
	if err := (ClassificationResult{Confidence: 0.5}).Validate(); err == nil {
		t.Errorf("expected error for empty label")
	}
	if err := (ClassificationResult{Classification: "books", Confidence: 0.5}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSummarizeDonations(t *testing.T) {
	stats := SummarizeDonations([]Donation{
		{Status: DonationStatusPending},
		{Status: DonationStatusDelivered},
		{Status: DonationStatusPending},
		{Status: "in_transit"},
	})
	if stats.Total != 4 || stats.Pending != 2 || stats.Delivered != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
