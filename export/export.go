package export

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ReliProjectW/bidnet-hvac-scraper/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "HVAC Contracts"

// Column widths in the Excel export are sized to content, capped here
const maxColumnWidth = 60

// Exporter writes contract records to spreadsheet files
type Exporter struct {
	outputDir string
}

// NewExporter creates an Exporter writing into outputDir, creating the
// directory if needed
func NewExporter(outputDir string) (*Exporter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Exporter{outputDir: outputDir}, nil
}

// WriteAll writes the timestamped .xlsx/.csv file pair for the full
// extracted set and returns both paths
func (e *Exporter) WriteAll(contracts []models.Contract) (excelPath, csvPath string, err error) {
	return e.writePair(contracts, "hvac_contracts_full_extraction")
}

// WriteFiltered writes the relevance-filtered subset as a second,
// separately named file pair
func (e *Exporter) WriteFiltered(contracts []models.Contract) (excelPath, csvPath string, err error) {
	return e.writePair(contracts, "hvac_contracts_filtered")
}

func (e *Exporter) writePair(contracts []models.Contract, prefix string) (excelPath, csvPath string, err error) {
	timestamp := time.Now().Unix()

	excelPath, err = e.WriteExcel(contracts, fmt.Sprintf("%s_%d.xlsx", prefix, timestamp))
	if err != nil {
		return "", "", err
	}

	csvPath, err = e.WriteCSV(contracts, fmt.Sprintf("%s_%d.csv", prefix, timestamp))
	if err != nil {
		return "", "", err
	}

	return excelPath, csvPath, nil
}

var excelHeader = []interface{}{
	"Row_Number", "Title", "Agency", "Location", "Dates",
	"Estimated_Value", "URL", "Search_Keyword", "Contract_ID", "Full_Text_Preview",
}

// WriteExcel writes contracts to an .xlsx file with one row per
// contract and content-sized columns
func (e *Exporter) WriteExcel(contracts []models.Contract, filename string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &excelHeader); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	widths := make([]int, len(excelHeader))
	for i, h := range excelHeader {
		widths[i] = len(h.(string))
	}

	for i, contract := range contracts {
		row := []interface{}{
			i + 1,
			contract.Title,
			contract.Agency,
			contract.Location,
			contract.Dates,
			contract.EstimatedValue,
			contract.URL,
			contract.SearchKeyword,
			contract.ContractID,
			preview(contract.FullText, 300),
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", i+1, err)
		}

		for col, value := range row {
			if n := len(fmt.Sprint(value)); n > widths[col] {
				widths[col] = n
			}
		}
	}

	for col, width := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return "", fmt.Errorf("failed to compute column name: %w", err)
		}
		adjusted := width + 2
		if adjusted > maxColumnWidth {
			adjusted = maxColumnWidth
		}
		if err := f.SetColWidth(sheetName, name, name, float64(adjusted)); err != nil {
			return "", fmt.Errorf("failed to set column width: %w", err)
		}
	}

	path := filepath.Join(e.outputDir, filename)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}

	log.Printf("Saved %d contracts to Excel file: %s\n", len(contracts), path)
	return path, nil
}

var csvHeader = []string{
	"Row_Number", "Title", "Agency", "Location", "Dates",
	"Estimated_Value", "URL", "Search_Keyword", "Contract_ID",
}

// WriteCSV writes contracts to a .csv file with the same columns as
// the Excel export minus the text preview
func (e *Exporter) WriteCSV(contracts []models.Contract, filename string) (string, error) {
	path := filepath.Join(e.outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, contract := range contracts {
		record := []string{
			strconv.Itoa(i + 1),
			contract.Title,
			contract.Agency,
			contract.Location,
			contract.Dates,
			contract.EstimatedValue,
			contract.URL,
			contract.SearchKeyword,
			contract.ContractID,
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}

	log.Printf("Saved %d contracts to CSV file: %s\n", len(contracts), path)
	return path, nil
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
