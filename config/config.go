package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Portal URLs. BidNet Direct routes logins through a SAML identity
// provider, but navigating to the public login path is enough to land
// on the credential form.
const (
	BaseURL   = "https://www.bidnetdirect.com"
	LoginURL  = "https://www.bidnetdirect.com/public/authentication/login"
	SearchURL = "https://www.bidnetdirect.com/private/supplier/solicitations/search"
)

// Config holds search parameters, browser settings and output paths
type Config struct {
	Search  SearchConfig  `yaml:"search"`
	Browser BrowserConfig `yaml:"browser"`
	Output  OutputConfig  `yaml:"output"`
}

// SearchConfig represents the search and filter criteria
type SearchConfig struct {
	Keyword          string   `yaml:"keyword"`
	TargetKeywords   []string `yaml:"target_keywords"`
	NegativeKeywords []string `yaml:"negative_keywords"`
	LocationFilters  []string `yaml:"location_filters"`
	ResultsPerPage   int      `yaml:"results_per_page"`
	MaxPages         int      `yaml:"max_pages"`
}

// BrowserConfig holds headless browser settings
type BrowserConfig struct {
	Headless  bool   `yaml:"headless"`
	UserAgent string `yaml:"user_agent"`
}

// OutputConfig holds file locations for exports and run artifacts
type OutputConfig struct {
	Dir     string `yaml:"dir"`      // exported .xlsx/.csv files
	DataDir string `yaml:"data_dir"` // cookies, debug page dumps
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Search.ResultsPerPage <= 0 {
		cfg.Search.ResultsPerPage = 25
	}
	if cfg.Search.MaxPages <= 0 {
		cfg.Search.MaxPages = 20
	}

	return cfg, nil
}

// GetDefaultConfig returns the default Southern California HVAC search
func GetDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Search.Keyword = "hvac"
	cfg.Search.TargetKeywords = []string{
		"hvac system replacement",
		"hvac system installation",
		"hvac installation",
		"hvac replacement",
		"split system",
		"heat pump",
		"heat pump replacement",
		"heat pump installation",
		"air conditioner",
		"air conditioning unit",
		"ac unit",
		"mini-split",
		"mini split",
		"furnace",
		"air handler",
		"install",
		"installation",
		"replace",
		"replacement",
		"new hvac",
		"hvac upgrade",
	}
	cfg.Search.NegativeKeywords = []string{
		"geothermal",
		"ground source",
		"earth source",
		"maintenance",
		"service contract",
		"maintenance contract",
		"service agreement",
		"ongoing maintenance",
		"preventive maintenance",
		"routine maintenance",
		"annual service",
		"service call",
		"troubleshoot",
	}
	cfg.Search.LocationFilters = []string{
		"Los Angeles County, CA",
		"Orange County, CA",
		"San Bernardino County, CA",
		"Riverside County, CA",
		"San Diego County, CA",
		"Ventura County, CA",
		"Imperial County, CA",
	}
	cfg.Search.ResultsPerPage = 25
	cfg.Search.MaxPages = 20
	cfg.Browser.Headless = true
	cfg.Browser.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	cfg.Output.Dir = "exports"
	cfg.Output.DataDir = "data"
	return cfg
}

// Credentials reads the portal credentials from the environment.
// godotenv is loaded in main, so a .env file also works.
func Credentials() (username, password string, err error) {
	username = os.Getenv("BIDNET_USERNAME")
	password = os.Getenv("BIDNET_PASSWORD")
	if username == "" || password == "" {
		return "", "", fmt.Errorf("BIDNET_USERNAME and BIDNET_PASSWORD environment variables must be set")
	}
	return username, password, nil
}
