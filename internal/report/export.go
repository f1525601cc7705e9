package report

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding exported transactions
const SheetName = "Transactions"

// XLSXContentType is the MIME type of generated workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	filteredHeader = []any{"Date", "Type", "Category", "Description", "Amount"}
	ledgerHeader   = []any{"ID", "Amount", "Type", "Category", "Description", "Date", "Created At"}
)

// ExportFileName returns the attachment name of a filtered export made on day
func ExportFileName(day time.Time) string {
	return fmt.Sprintf("transactions_%s.xlsx", day.Format(models.DateLayout))
}

// FilteredRows shapes transactions into the rows of the filtered export
func FilteredRows(txs []models.Transaction) [][]any {
	rows := make([][]any, 0, len(txs)+1)
	rows = append(rows, filteredHeader)
	for _, tx := range txs {
		rows = append(rows, []any{
			tx.Date.String(),
			TypeLabel(tx.Type),
			tx.Category,
			deref(tx.Description),
			tx.Amount.InexactFloat64(),
		})
	}
	return rows
}

// LedgerRows shapes transactions into the rows of the full ledger export
func LedgerRows(txs []models.Transaction) [][]any {
	rows := make([][]any, 0, len(txs)+1)
	rows = append(rows, ledgerHeader)
	for _, tx := range txs {
		created := ""
		if !tx.CreatedAt.IsZero() {
			created = tx.CreatedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []any{
			tx.ID,
			tx.Amount.InexactFloat64(),
			tx.Type,
			tx.Category,
			deref(tx.Description),
			tx.Date.String(),
			created,
		})
	}
	return rows
}

// TypeLabel is the human label of a transaction type
func TypeLabel(t string) string {
	if t == models.TypeIncome {
		return "Income"
	}
	return "Expense"
}

// FilteredWorkbook renders the filtered export as an xlsx document
func FilteredWorkbook(txs []models.Transaction) ([]byte, error) {
	return writeWorkbook(FilteredRows(txs), false)
}

// LedgerWorkbook renders every transaction with columns sized to their content
func LedgerWorkbook(txs []models.Transaction) ([]byte, error) {
	return writeWorkbook(LedgerRows(txs), true)
}

// ColumnWidths returns, per column, the longest rendered cell in characters
func ColumnWidths(rows [][]any) []int {
	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if n := utf8.RuneCountInString(fmt.Sprint(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func writeWorkbook(rows [][]any, sizeColumns bool) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		row := row
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if sizeColumns {
		for i, w := range ColumnWidths(rows) {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetColWidth(SheetName, col, col, float64(w)); err != nil {
				return nil, fmt.Errorf("failed to size column %s: %w", col, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
