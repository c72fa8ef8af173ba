package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ReliProjectW/bidnet-hvac-scraper/config"
	"github.com/ReliProjectW/bidnet-hvac-scraper/extract"
	"github.com/ReliProjectW/bidnet-hvac-scraper/filter"
	"github.com/ReliProjectW/bidnet-hvac-scraper/parser"
)

type stubPager struct {
	pages []string
	index int
}

func (s *stubPager) HTML() (string, error) {
	return s.pages[s.index], nil
}

func (s *stubPager) Next() (bool, error) {
	if s.index+1 >= len(s.pages) {
		return false, nil
	}
	s.index++
	return true, nil
}

func resultsPage(total int, titles ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	fmt.Fprintf(&sb, "<div>1 - %d of %d results found</div>", len(titles), total)
	sb.WriteString("<table><tbody>")
	for i, title := range titles {
		fmt.Fprintf(&sb, `<tr class="mets-table-row odd">
			<td><a href="/private/supplier/solicitation/%d">%s</a></td>
			<td class="agency">County of Riverside</td>
			<td class="location">Riverside, CA</td>
			<td class="date">02/01/2026</td>
		</tr>`, i+1, title)
	}
	sb.WriteString("</tbody></table></body></html>")
	return sb.String()
}

func readCSVRows(t *testing.T, dir, pattern string) [][]string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one %s file, got %v (err=%v)", pattern, matches, err)
	}
	file, err := os.Open(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

// The primary export must contain the full validated set: the count
// the portal advertised is the count the file holds, even when the
// relevance filter drops rows into the secondary export.
func TestPrimaryExportMatchesAdvertisedTotal(t *testing.T) {
	pager := &stubPager{pages: []string{resultsPage(3,
		"HVAC System Replacement - City Hall",
		"HVAC Preventive Maintenance Services Agreement",
		"Chiller Plant Upgrade Phase 1",
	)}}

	res, err := extract.NewExtractor(parser.NewParser(), 20, 25).Run(pager, "hvac")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := res.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	cfg := config.GetDefaultConfig()
	cfg.Output.Dir = t.TempDir()

	filtered := filter.NewFilter(&cfg.Search).Apply(res.Contracts)
	if len(filtered) >= len(res.Contracts) {
		t.Fatalf("filter kept all %d contracts, fixture must drop some", len(res.Contracts))
	}

	if err := exportContracts(cfg, res.Contracts, filtered, "hvac", options{}); err != nil {
		t.Fatalf("exportContracts() error = %v", err)
	}

	records := readCSVRows(t, cfg.Output.Dir, "hvac_contracts_full_extraction_*.csv")
	if got := len(records) - 1; got != res.ExpectedTotal {
		t.Fatalf("primary export has %d rows, portal advertised %d", got, res.ExpectedTotal)
	}
	urls := make(map[string]bool)
	for _, record := range records[1:] {
		urls[record[6]] = true
	}
	if len(urls) != res.ExpectedTotal {
		t.Errorf("primary export has %d unique URLs, want %d", len(urls), res.ExpectedTotal)
	}

	filteredRecords := readCSVRows(t, cfg.Output.Dir, "hvac_contracts_filtered_*.csv")
	if got := len(filteredRecords) - 1; got != len(filtered) {
		t.Errorf("filtered export has %d rows, want %d", got, len(filtered))
	}
}
