// Package auth logs into BidNet Direct and persists session cookies so
// repeat runs can skip the credential form.
package auth

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/ReliProjectW/bidnet-hvac-scraper/config"
)

// Saved cookies older than this trigger a fresh login
const cookieMaxAge = 24 * time.Hour

// Authenticator performs the portal login and manages saved cookies
type Authenticator struct {
	username   string
	password   string
	cookieFile string
}

// cookieJar is the on-disk cookie format
type cookieJar struct {
	Timestamp int64                  `json:"timestamp"`
	Cookies   []*proto.NetworkCookie `json:"cookies"`
}

// NewAuthenticator reads credentials from the environment and anchors
// the cookie file in dataDir
func NewAuthenticator(dataDir string) (*Authenticator, error) {
	username, password, err := config.Credentials()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Authenticator{
		username:   username,
		password:   password,
		cookieFile: filepath.Join(dataDir, "bidnet_cookies.json"),
	}, nil
}

// Login navigates to the portal login form, enters credentials and
// submits. The caller is expected to save cookies afterwards.
func (a *Authenticator) Login(page *rod.Page) error {
	log.Printf("Navigating to login page: %s\n", config.LoginURL)
	if err := page.Navigate(config.LoginURL); err != nil {
		return fmt.Errorf("failed to navigate to login page: %w", err)
	}
	page.WaitLoad()
	time.Sleep(3 * time.Second)

	usernameField, err := page.Timeout(10 * time.Second).Element("input[name='j_username']")
	if err != nil {
		return fmt.Errorf("login form username field not found: %w", err)
	}
	passwordField, err := page.Timeout(10 * time.Second).Element("input[name='j_password']")
	if err != nil {
		return fmt.Errorf("login form password field not found: %w", err)
	}

	log.Println("Entering credentials")
	if err := usernameField.SelectAllText(); err != nil {
		return fmt.Errorf("failed to focus username field: %w", err)
	}
	if err := usernameField.Input(a.username); err != nil {
		return fmt.Errorf("failed to enter username: %w", err)
	}
	if err := passwordField.SelectAllText(); err != nil {
		return fmt.Errorf("failed to focus password field: %w", err)
	}
	if err := passwordField.Input(a.password); err != nil {
		return fmt.Errorf("failed to enter password: %w", err)
	}

	submit, err := page.Timeout(5 * time.Second).Element("button[type='submit']")
	if err != nil {
		return fmt.Errorf("login submit button not found: %w", err)
	}
	log.Println("Clicking login button")
	if err := submit.Click("left", 1); err != nil {
		return fmt.Errorf("failed to click login button: %w", err)
	}

	page.WaitLoad()
	time.Sleep(3 * time.Second)

	if a.IsLoginPage(page) {
		return fmt.Errorf("still on login page after submitting credentials")
	}

	log.Println("Login completed")
	return nil
}

// IsLoginPage reports whether the page is showing the credential form.
// The portal bounces expired sessions back here mid-navigation.
func (a *Authenticator) IsLoginPage(page *rod.Page) bool {
	info, err := page.Info()
	if err == nil && strings.Contains(info.URL, "authentication/login") {
		return true
	}
	has, _, err := page.Has("input[name='j_username']")
	return err == nil && has
}

// EnsureLoggedIn re-runs the login when a navigation landed on the
// credential form
func (a *Authenticator) EnsureLoggedIn(page *rod.Page) error {
	if !a.IsLoginPage(page) {
		return nil
	}
	log.Println("Login required, performing auto-login")
	return a.Login(page)
}

// SaveCookies writes the browser's cookies to disk for reuse
func (a *Authenticator) SaveCookies(browser *rod.Browser) error {
	cookies, err := browser.GetCookies()
	if err != nil {
		return fmt.Errorf("failed to read browser cookies: %w", err)
	}

	jar := cookieJar{
		Timestamp: time.Now().Unix(),
		Cookies:   cookies,
	}
	data, err := json.MarshalIndent(jar, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	if err := os.WriteFile(a.cookieFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cookie file: %w", err)
	}

	log.Printf("Cookies saved to %s\n", a.cookieFile)
	return nil
}

// LoadCookies restores saved cookies into the browser. Returns false
// when no usable cookie file exists.
func (a *Authenticator) LoadCookies(browser *rod.Browser) (bool, error) {
	jar, ok, err := a.readJar()
	if err != nil || !ok {
		return false, err
	}

	params := make([]*proto.NetworkCookieParam, 0, len(jar.Cookies))
	for _, c := range jar.Cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			Expires:  c.Expires,
		})
	}

	if err := browser.SetCookies(params); err != nil {
		return false, fmt.Errorf("failed to set browser cookies: %w", err)
	}

	log.Printf("Loaded %d saved cookies\n", len(params))
	return true, nil
}

// HTTPCookies converts the saved cookies for use by an HTTP client.
// Returns false when no usable cookie file exists.
func (a *Authenticator) HTTPCookies() ([]*http.Cookie, bool, error) {
	jar, ok, err := a.readJar()
	if err != nil || !ok {
		return nil, false, err
	}

	cookies := make([]*http.Cookie, 0, len(jar.Cookies))
	for _, c := range jar.Cookies {
		cookies = append(cookies, &http.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		})
	}
	return cookies, true, nil
}

func (a *Authenticator) readJar() (*cookieJar, bool, error) {
	data, err := os.ReadFile(a.cookieFile)
	if os.IsNotExist(err) {
		log.Println("No saved cookies found")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cookie file: %w", err)
	}

	var jar cookieJar
	if err := json.Unmarshal(data, &jar); err != nil {
		return nil, false, fmt.Errorf("failed to decode cookie file: %w", err)
	}

	if time.Since(time.Unix(jar.Timestamp, 0)) > cookieMaxAge {
		log.Println("Saved cookies are too old, will re-authenticate")
		return nil, false, nil
	}
	return &jar, true, nil
}
