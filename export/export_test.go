package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ReliProjectW/bidnet-hvac-scraper/models"

	"github.com/xuri/excelize/v2"
)

func sampleContracts() []models.Contract {
	return []models.Contract{
		{
			ContractID:     "SOL-1001",
			Title:          "HVAC System Replacement - City Hall",
			Agency:         "City of Riverside",
			Location:       "Riverside, CA",
			Dates:          "02/01/2026 | 03/15/2026",
			EstimatedValue: "$250,000",
			URL:            "https://www.bidnetdirect.com/private/supplier/solicitation/1001",
			SearchKeyword:  "hvac",
			FullText:       strings.Repeat("Scope of work includes chiller replacement. ", 20),
		},
		{
			ContractID:     "SOL-1002",
			Title:          "Boiler Maintenance Agreement",
			Agency:         "San Bernardino USD",
			Location:       "San Bernardino, CA",
			Dates:          "02/10/2026",
			EstimatedValue: "Not specified",
			URL:            "https://www.bidnetdirect.com/private/supplier/solicitation/1002",
			SearchKeyword:  "hvac",
		},
	}
}

func TestWriteAll(t *testing.T) {
	exporter, err := NewExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}

	excelPath, csvPath, err := exporter.WriteAll(sampleContracts())
	if err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	base := filepath.Base(excelPath)
	if !strings.HasPrefix(base, "hvac_contracts_full_extraction_") || !strings.HasSuffix(base, ".xlsx") {
		t.Errorf("unexpected Excel filename %q", base)
	}
	if strings.TrimSuffix(excelPath, ".xlsx") != strings.TrimSuffix(csvPath, ".csv") {
		t.Errorf("file pair timestamps differ: %q vs %q", excelPath, csvPath)
	}
	for _, path := range []string{excelPath, csvPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("exported file missing: %v", err)
		}
	}
}

func TestWriteFiltered(t *testing.T) {
	exporter, err := NewExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}

	excelPath, csvPath, err := exporter.WriteFiltered(sampleContracts())
	if err != nil {
		t.Fatalf("WriteFiltered() error = %v", err)
	}

	for _, path := range []string{excelPath, csvPath} {
		if !strings.HasPrefix(filepath.Base(path), "hvac_contracts_filtered_") {
			t.Errorf("unexpected filtered filename %q", filepath.Base(path))
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("exported file missing: %v", err)
		}
	}
}

func TestWriteExcel(t *testing.T) {
	exporter, err := NewExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}

	path, err := exporter.WriteExcel(sampleContracts(), "contracts.xlsx")
	if err != nil {
		t.Fatalf("WriteExcel() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 contracts", len(rows))
	}

	if rows[0][0] != "Row_Number" || rows[0][9] != "Full_Text_Preview" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	if rows[1][0] != "1" || rows[2][0] != "2" {
		t.Errorf("row numbers = %q, %q, want 1, 2", rows[1][0], rows[2][0])
	}
	if rows[1][1] != "HVAC System Replacement - City Hall" {
		t.Errorf("title = %q", rows[1][1])
	}
	if rows[1][6] != "https://www.bidnetdirect.com/private/supplier/solicitation/1001" {
		t.Errorf("url = %q", rows[1][6])
	}

	// Long full text is truncated to a preview
	previewCell := rows[1][9]
	if len(previewCell) != 303 || !strings.HasSuffix(previewCell, "...") {
		t.Errorf("preview length = %d, want 300 chars plus ellipsis", len(previewCell))
	}
}

func TestWriteCSV(t *testing.T) {
	exporter, err := NewExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}

	path, err := exporter.WriteCSV(sampleContracts(), "contracts.csv")
	if err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to reopen CSV file: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("failed to read CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 contracts", len(records))
	}
	if len(records[0]) != 9 {
		t.Errorf("got %d CSV columns, want 9", len(records[0]))
	}
	if records[0][8] != "Contract_ID" {
		t.Errorf("last header column = %q, want Contract_ID", records[0][8])
	}
	if records[2][1] != "Boiler Maintenance Agreement" {
		t.Errorf("title = %q", records[2][1])
	}
	if records[1][5] != "$250,000" {
		t.Errorf("estimated value = %q", records[1][5])
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short", 300); got != "short" {
		t.Errorf("preview(short) = %q", got)
	}
	long := strings.Repeat("x", 400)
	if got := preview(long, 300); len(got) != 303 || !strings.HasSuffix(got, "...") {
		t.Errorf("preview(long) length = %d", len(got))
	}
}
