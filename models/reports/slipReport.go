package reports

import (
	"context"
	"fmt"

	"github.com/mmdatafocus/chitty_backend/config"
	"github.com/mmdatafocus/chitty_backend/models"
	"github.com/mmdatafocus/chitty_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type ChittySummary struct {
	ChittiId        string          `json:"chitti_id"`
	ChittyName      string          `json:"chitty_name"`
	Amount          decimal.Decimal `json:"amount"`
	TotalMonths     int             `json:"total_months"`
	MemberCount     int             `json:"member_count"`
	SlipCount       int             `json:"slip_count"`
	CollectedAmount decimal.Decimal `json:"collected_amount"`
	DueAmount       decimal.Decimal `json:"due_amount"`
}

// GetChittySummary aggregates roster size and collected vs outstanding
// totals per active chitty.
func GetChittySummary(ctx context.Context) ([]*ChittySummary, error) {

	db := config.GetDB()

	var results []*ChittySummary

	query := db.Raw(`
			SELECT
				c.id AS chitti_id,
				c.name AS chitty_name,
				c.amount,
				c.total_months,
				(SELECT COUNT(*) FROM members m WHERE m.chitti_id = c.id) AS member_count,
				(SELECT COUNT(*) FROM monthly_slips s WHERE s.chitti_id = c.id) AS slip_count,
				COALESCE(SUM(CASE WHEN spr.is_paid = 1 THEN spr.amount ELSE 0 END), 0) AS collected_amount,
				COALESCE(SUM(CASE WHEN spr.is_paid = 0 THEN spr.amount ELSE 0 END), 0) AS due_amount
			FROM chitties AS c
			LEFT JOIN monthly_slips AS s ON s.chitti_id = c.id
			LEFT JOIN slip_payment_records AS spr ON spr.slip_id = s.id
			WHERE c.is_active = 1
			GROUP BY c.id, c.name, c.amount, c.total_months
			ORDER BY c.created_at ASC`)

	if err := query.WithContext(ctx).Scan(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

// ExportChittySummaryExcel renders the summary as a one-sheet workbook.
// The caller owns closing the file.
func ExportChittySummaryExcel(ctx context.Context) (*excelize.File, error) {

	data, err := GetChittySummary(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Sheet1"
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, err
	}

	// Add headers
	f.SetCellValue(sheet, "A1", "Chitty")
	f.SetCellValue(sheet, "B1", "Amount")
	f.SetCellValue(sheet, "C1", "TotalMonths")
	f.SetCellValue(sheet, "D1", "Members")
	f.SetCellValue(sheet, "E1", "SlipsGenerated")
	f.SetCellValue(sheet, "F1", "Collected")
	f.SetCellValue(sheet, "G1", "Due")

	// Add data
	for i, d := range data {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+row, d.ChittyName)
		f.SetCellValue(sheet, "B"+row, d.Amount.InexactFloat64())
		f.SetCellValue(sheet, "C"+row, d.TotalMonths)
		f.SetCellValue(sheet, "D"+row, d.MemberCount)
		f.SetCellValue(sheet, "E"+row, d.SlipCount)
		f.SetCellValue(sheet, "F"+row, d.CollectedAmount.InexactFloat64())
		f.SetCellValue(sheet, "G"+row, d.DueAmount.InexactFloat64())
	}

	return f, nil
}

// ExportSlipExcel renders one slip's payment records as a workbook.
func ExportSlipExcel(ctx context.Context, slipId string) (*excelize.File, error) {

	slip, err := models.GetSlip(ctx, slipId)
	if err != nil {
		return nil, err
	}
	chitty, err := models.GetChitty(ctx, slip.ChittiId)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Sheet1"
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, err
	}

	f.SetCellValue(sheet, "A1", chitty.Name)
	f.SetCellValue(sheet, "B1", fmt.Sprintf("Month %d", slip.Month))
	f.SetCellValue(sheet, "C1", slip.SlipDate.Format("2006-01-02"))

	// Add headers
	f.SetCellValue(sheet, "A2", "Member")
	f.SetCellValue(sheet, "B2", "Amount")
	f.SetCellValue(sheet, "C2", "Paid")
	f.SetCellValue(sheet, "D2", "Lifted")
	f.SetCellValue(sheet, "E2", "PaymentDate")

	// Add data
	for i, record := range slip.PaymentRecords {
		row := fmt.Sprint(i + 3)
		f.SetCellValue(sheet, "A"+row, record.MemberName)
		f.SetCellValue(sheet, "B"+row, record.Amount.InexactFloat64())
		f.SetCellValue(sheet, "C"+row, utils.DereferencePtr(record.IsPaid, false))
		f.SetCellValue(sheet, "D"+row, utils.DereferencePtr(record.IsLifted, false))
		if record.PaymentDate != nil {
			f.SetCellValue(sheet, "E"+row, record.PaymentDate.Format("2006-01-02"))
		}
	}

	return f, nil
}
