package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/getwhereabouts/whereabouts/server/timezone"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where whereabouts stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// Timezone is the IANA identifier of the single organizational timezone.
	// Every date expression is interpreted in this zone.
	Timezone string // WHEREABOUTS_TIMEZONE (default: America/New_York)

	// Slack integration
	SlackSigningSecret     string // WHEREABOUTS_SLACK_SIGNING_SECRET
	SlackVerificationToken string // WHEREABOUTS_SLACK_VERIFICATION_TOKEN (legacy token check)
	SlackTeamID            string // WHEREABOUTS_SLACK_TEAM_ID
	SlackWebhookURL        string // WHEREABOUTS_SLACK_WEBHOOK_URL (daily digest target)

	// Daily digest window, "HH:MM" in the organizational timezone.
	DigestWindowStart string // WHEREABOUTS_DIGEST_WINDOW_START (default: 08:50)
	DigestWindowEnd   string // WHEREABOUTS_DIGEST_WINDOW_END (default: 09:10)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Location resolves the organizational timezone. Validate must have run first.
func (p *Profile) Location() *time.Location {
	loc, err := timezone.ParseTimezone(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from WHEREABOUTS_* environment variables.
// Values already set on the profile (e.g. from flags) take precedence.
func (p *Profile) FromEnv() {
	setIfEmpty := func(dst *string, key string, defaultValue string) {
		if *dst == "" {
			*dst = getEnvOrDefault(key, defaultValue)
		}
	}

	setIfEmpty(&p.Mode, "WHEREABOUTS_MODE", "dev")
	setIfEmpty(&p.Addr, "WHEREABOUTS_ADDR", "")
	setIfEmpty(&p.Data, "WHEREABOUTS_DATA", "")
	setIfEmpty(&p.DSN, "WHEREABOUTS_DSN", "")
	setIfEmpty(&p.Driver, "WHEREABOUTS_DRIVER", "sqlite")
	setIfEmpty(&p.Timezone, "WHEREABOUTS_TIMEZONE", "America/New_York")
	setIfEmpty(&p.SlackSigningSecret, "WHEREABOUTS_SLACK_SIGNING_SECRET", "")
	setIfEmpty(&p.SlackVerificationToken, "WHEREABOUTS_SLACK_VERIFICATION_TOKEN", "")
	setIfEmpty(&p.SlackTeamID, "WHEREABOUTS_SLACK_TEAM_ID", "")
	setIfEmpty(&p.SlackWebhookURL, "WHEREABOUTS_SLACK_WEBHOOK_URL", "")
	setIfEmpty(&p.DigestWindowStart, "WHEREABOUTS_DIGEST_WINDOW_START", "08:50")
	setIfEmpty(&p.DigestWindowEnd, "WHEREABOUTS_DIGEST_WINDOW_END", "09:10")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported db driver %q: only 'sqlite' and 'postgres' are supported", p.Driver)
	}

	if !timezone.IsValidTimezone(p.Timezone) {
		return errors.Errorf("invalid timezone %q", p.Timezone)
	}

	for _, w := range []string{p.DigestWindowStart, p.DigestWindowEnd} {
		if _, err := time.Parse("15:04", w); err != nil {
			return errors.Wrapf(err, "invalid digest window boundary %q", w)
		}
	}

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("whereabouts_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	return nil
}
