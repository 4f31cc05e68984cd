package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/huson-app/huson/internal/core/domain"
)

const (
	donationsSheet = "Donations"
	summarySheet   = "Summary"
	dateLayout     = "2006-01-02"
)

var donationHeader = []any{
	"Created", "Item type", "Item name", "Quantity", "Unit", "Pickup location",
	"Expiry date", "Status", "Classification", "Confidence %", "Image URL",
}

// WriteHistory renders a donor's history as a two-sheet workbook.
func WriteHistory(w io.Writer, history *domain.DonationHistory) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", donationsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(donationsSheet, "A1", &donationHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, d := range history.Donations {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := donationRow(d)
		if err := f.SetSheetRow(donationsSheet, cell, &row); err != nil {
			return fmt.Errorf("write donation %s: %w", d.ID, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	summary := [][]any{
		{"Total", history.Stats.Total},
		{"Delivered", history.Stats.Delivered},
		{"Pending", history.Stats.Pending},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func donationRow(d domain.Donation) []any {
	expiry := ""
	if d.ExpiryDate != nil {
		expiry = d.ExpiryDate.Format(dateLayout)
	}
	imageURL := ""
	if d.ImageURL != nil {
		imageURL = *d.ImageURL
	}
	label, confidence := "", ""
	if d.ClassificationResult != nil {
		label = d.ClassificationResult.Classification
		confidence = fmt.Sprintf("%d", d.ClassificationResult.ConfidencePercent())
	}
	return []any{
		d.CreatedAt.UTC().Format(dateLayout),
		string(d.ItemType),
		d.ItemName,
		d.Quantity,
		d.Unit,
		d.PickupLocation,
		expiry,
		string(d.Status),
		label,
		confidence,
		imageURL,
	}
}
