package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/usf-territorio/territorio-backend/pkg/config"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// SupportedDrivers lists the dialect directories kept in lockstep.
var SupportedDrivers = []string{config.DriverPostgres, config.DriverSQLite}

// CreateSQLMigration writes <base>/<driver>/<YYYYMMDDHHMMSS>_<name>.sql for
// every driver with one shared version, so the dialect trees stay in parity.
// Without drivers it writes a single file directly under base.
func CreateSQLMigration(base string, name string, drivers ...string) ([]string, error) {
	if base == "" {
		return nil, fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return nil, fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	dirs := []string{base}
	if len(drivers) > 0 {
		dirs = dirs[:0]
		for _, driver := range drivers {
			if _, err := gooseDialect(driver); err != nil {
				return nil, err
			}
			dirs = append(dirs, DialectDir(base, driver))
		}
	}

	filename := fmt.Sprintf("%s_%s.sql", time.Now().UTC().Format("20060102150405"), safe)
	for _, dir := range dirs {
		if _, err := os.Stat(filepath.Join(dir, filename)); err == nil {
			return nil, fmt.Errorf("migration already exists: %s", filepath.Join(dir, filename))
		}
	}

	paths := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return paths, fmt.Errorf("mkdir %q: %w", dir, err)
		}
		full := filepath.Join(dir, filename)
		if err := os.WriteFile(full, []byte(migrationTemplate(safe)), 0o644); err != nil {
			return paths, fmt.Errorf("write migration %q: %w", full, err)
		}
		paths = append(paths, full)
	}
	return paths, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

func migrationTemplate(name string) string {
	return fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`, name, name)
}
