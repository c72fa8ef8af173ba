package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ReliProjectW/bidnet-hvac-scraper/auth"
	"github.com/ReliProjectW/bidnet-hvac-scraper/config"
	"github.com/ReliProjectW/bidnet-hvac-scraper/db"
	"github.com/ReliProjectW/bidnet-hvac-scraper/export"
	"github.com/ReliProjectW/bidnet-hvac-scraper/extract"
	"github.com/ReliProjectW/bidnet-hvac-scraper/fetcher"
	"github.com/ReliProjectW/bidnet-hvac-scraper/filter"
	"github.com/ReliProjectW/bidnet-hvac-scraper/models"
	"github.com/ReliProjectW/bidnet-hvac-scraper/parser"
	"github.com/ReliProjectW/bidnet-hvac-scraper/scheduler"
	"github.com/ReliProjectW/bidnet-hvac-scraper/scraper"
	"github.com/ReliProjectW/bidnet-hvac-scraper/sheets"
)

type options struct {
	configPath     string
	keyword        string
	maxPages       int
	mode           string
	outputDir      string
	spreadsheetURL string
	credentials    string
	testAuth       bool
	watch          bool
	interval       time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&opts.keyword, "keyword", "", "Search keyword (overrides config)")
	flag.IntVar(&opts.maxPages, "pages", 0, "Maximum number of result pages (overrides config)")
	flag.StringVar(&opts.mode, "mode", "browser", "Fetch mode: browser or http")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for export files (overrides config)")
	flag.StringVar(&opts.spreadsheetURL, "spreadsheet", "", "Google Sheets URL to also write results to (optional)")
	flag.StringVar(&opts.credentials, "credentials", "", "Path to Google service account credentials JSON (or use GOOGLE_SHEETS_CREDENTIALS env var)")
	flag.BoolVar(&opts.testAuth, "test-auth", false, "Test portal authentication only")
	flag.BoolVar(&opts.watch, "watch", false, "Keep running the search on an interval")
	flag.DurationVar(&opts.interval, "interval", 6*time.Hour, "Interval between runs in watch mode")
	flag.Parse()

	// .env is optional; real environment variables win
	godotenv.Load()

	cfg := loadConfig(opts.configPath)
	if opts.keyword != "" {
		cfg.Search.Keyword = opts.keyword
	}
	if opts.maxPages > 0 {
		cfg.Search.MaxPages = opts.maxPages
	}
	if opts.outputDir != "" {
		cfg.Output.Dir = opts.outputDir
	}

	authenticator, err := auth.NewAuthenticator(cfg.Output.DataDir)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}

	if opts.testAuth {
		if err := testAuthentication(cfg, authenticator); err != nil {
			log.Fatalf("Authentication test FAILED: %v\n", err)
		}
		log.Println("Authentication test PASSED")
		return
	}

	run := func() error { return runOnce(cfg, authenticator, opts) }

	if opts.watch {
		log.Printf("Watch mode: running every %s\n", opts.interval)
		sched := scheduler.NewScheduler(opts.interval, run)
		sched.Start()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		sig := <-sigCh
		log.Printf("Received %s, shutting down\n", sig)
		sched.Stop()
		<-sched.Done()
		return
	}

	if err := run(); err != nil {
		log.Fatalf("Run failed: %v\n", err)
	}
}

// loadConfig loads configuration from file or returns defaults
func loadConfig(configPath string) *config.Config {
	if _, err := os.Stat(configPath); err != nil {
		log.Println("Config file not found. Using default configuration.")
		return config.GetDefaultConfig()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config file: %v. Using defaults.\n", err)
		return config.GetDefaultConfig()
	}
	return cfg
}

// testAuthentication launches a browser and performs a login
func testAuthentication(cfg *config.Config, authenticator *auth.Authenticator) error {
	rodScraper, err := scraper.NewRodScraper(cfg, authenticator)
	if err != nil {
		return fmt.Errorf("failed to create scraper: %w", err)
	}
	defer rodScraper.Close()

	return rodScraper.Login()
}

// runOnce executes the full pipeline: search, paginate-and-extract,
// validate, filter, export
func runOnce(cfg *config.Config, authenticator *auth.Authenticator, opts options) error {
	keyword := cfg.Search.Keyword

	src, err := newScraper(cfg, authenticator, opts.mode)
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Printf("Warning: failed to close scraper: %v\n", err)
		}
	}()

	var database *db.DB
	var runID int
	if db.Enabled() {
		database, err = db.NewDB()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.Close()

		run, err := database.CreateRun(keyword)
		if err != nil {
			return err
		}
		runID = run.ID
	}

	log.Printf("Searching for keyword: %s\n", keyword)
	if err := src.Search(keyword); err != nil {
		finishRun(database, runID, "failed", nil)
		return fmt.Errorf("search failed: %w", err)
	}

	extractor := extract.NewExtractor(parser.NewParser(), cfg.Search.MaxPages, cfg.Search.ResultsPerPage)
	res, err := extractor.Run(src, keyword)
	if err != nil {
		finishRun(database, runID, "failed", nil)
		return fmt.Errorf("extraction failed: %w", err)
	}

	if err := res.Validate(); err != nil {
		finishRun(database, runID, "failed", res)
		var mismatch *extract.CountMismatchError
		if errors.As(err, &mismatch) {
			return fmt.Errorf("result count validation failed: %w", err)
		}
		return err
	}

	if res.HasTotal {
		log.Printf("✅ SUCCESS: Extracted exactly %d contracts matching expected total of %d\n",
			len(res.Contracts), res.ExpectedTotal)
	} else {
		log.Printf("No expected total available for validation. Extracted %d contracts.\n", len(res.Contracts))
	}

	// The validated set is what the exported file pair must contain;
	// the relevance filter only produces a second, annotated export
	filtered := filter.NewFilter(&cfg.Search).Apply(res.Contracts)

	if err := exportContracts(cfg, res.Contracts, filtered, keyword, opts); err != nil {
		finishRun(database, runID, "failed", res)
		return err
	}

	if database != nil {
		if err := database.SaveContracts(runID, res.Contracts); err != nil {
			log.Printf("Warning: failed to save contracts to database: %v\n", err)
		}
		finishRun(database, runID, "done", res)
		if run, err := database.GetRunByID(runID); err == nil {
			log.Printf("Run %d recorded as %s: %d contracts over %d pages\n",
				run.ID, run.Status, run.ContractsCount, run.PagesCount)
		}
	}

	return nil
}

// newScraper builds the page source for the requested mode
func newScraper(cfg *config.Config, authenticator *auth.Authenticator, mode string) (scraper.Scraper, error) {
	switch mode {
	case "http":
		return fetcher.NewCollyFetcher(cfg, authenticator)
	case "browser":
		return scraper.NewRodScraper(cfg, authenticator)
	default:
		return nil, fmt.Errorf("unknown mode %q (want browser or http)", mode)
	}
}

// exportContracts writes the full file pair, the filtered pair and
// the optional Google Sheet
func exportContracts(cfg *config.Config, contracts, filtered []models.Contract, keyword string, opts options) error {
	exporter, err := export.NewExporter(cfg.Output.Dir)
	if err != nil {
		return err
	}

	excelPath, csvPath, err := exporter.WriteAll(contracts)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	var filteredExcel, filteredCSV string
	if len(filtered) > 0 {
		filteredExcel, filteredCSV, err = exporter.WriteFiltered(filtered)
		if err != nil {
			return fmt.Errorf("filtered export failed: %w", err)
		}
	}

	log.Println("============================================================")
	log.Println("EXTRACTION SUMMARY")
	log.Println("============================================================")
	log.Printf("Total contracts extracted: %d\n", len(contracts))
	log.Printf("HVAC-relevant contracts: %d\n", len(filtered))
	log.Printf("Search keyword: %s\n", keyword)
	log.Printf("Excel file: %s\n", excelPath)
	log.Printf("CSV file: %s\n", csvPath)
	if filteredExcel != "" {
		log.Printf("Filtered Excel file: %s\n", filteredExcel)
		log.Printf("Filtered CSV file: %s\n", filteredCSV)
	}
	log.Println("============================================================")

	if opts.spreadsheetURL == "" {
		return nil
	}

	spreadsheetID := sheets.ExtractSpreadsheetID(opts.spreadsheetURL)
	if spreadsheetID == "" {
		log.Printf("Warning: could not extract spreadsheet ID from URL: %s\n", opts.spreadsheetURL)
		return nil
	}

	writer, err := sheets.NewWriter(spreadsheetID, opts.credentials)
	if err != nil {
		log.Printf("Warning: failed to initialize Google Sheets writer: %v\n", err)
		return nil
	}

	sheetName := fmt.Sprintf("HVAC_%s", time.Now().Format("20060102_150405"))
	if _, _, err := writer.CreateSheetAndWriteContracts(sheetName, filtered, keyword); err != nil {
		log.Printf("Warning: failed to write to Google Sheets: %v\n", err)
	}

	return nil
}

func finishRun(database *db.DB, runID int, status string, res *extract.Result) {
	if database == nil {
		return
	}

	contracts, pages := 0, 0
	var expected *int
	if res != nil {
		contracts = len(res.Contracts)
		pages = res.Pages
		if res.HasTotal {
			expected = &res.ExpectedTotal
		}
	}

	if err := database.FinishRun(runID, status, contracts, pages, expected); err != nil {
		log.Printf("Warning: failed to update run status: %v\n", err)
	}
}
