package parser

import "testing"

func TestParseExpectedTotal(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name     string
		html     string
		expected int
		ok       bool
	}{
		{"range summary", "<div>1 - 25 of 53 results found</div>", 53, true},
		{"of results", "<span>26 - 50 of 142 results</span>", 142, true},
		{"results found", "<p>7 results found</p>", 7, true},
		{"total results", "<p>88 total results</p>", 88, true},
		{"showing range", "showing 1 - 25 of 310", 310, true},
		{"page of total", "page 1 of 3 (61 total)", 61, true},
		{"case insensitive", "<div>1 - 25 OF 53 RESULTS FOUND</div>", 53, true},
		{"no summary", "<div>Welcome to the portal</div>", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.ParseExpectedTotal(tt.html)
			if ok != tt.ok {
				t.Fatalf("ParseExpectedTotal() ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("ParseExpectedTotal() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestIsNoResultsRow(t *testing.T) {
	tests := []struct {
		title    string
		expected bool
	}{
		{"No results match your criteria", true},
		{"No records found", true},
		{"Nothing found", true},
		{"No title found", true},
		{"", true},
		{"   ", true},
		{"HVAC System Replacement at Civic Center", false},
		{"Notable Buildings Retrofit", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := IsNoResultsRow(tt.title); got != tt.expected {
				t.Errorf("IsNoResultsRow(%q) = %v, want %v", tt.title, got, tt.expected)
			}
		})
	}
}
