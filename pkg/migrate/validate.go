package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
)

// ValidateDir validates migration filenames + basic SQL headers.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{} // version -> filename

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}

		version := m[1]
		if prev, ok := seen[version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name

		full := filepath.Join(dir, name)
		b, err := os.ReadFile(full)
		if err != nil {
			return fmt.Errorf("read file %q: %w", full, err)
		}

		txt := string(b)
		if !strings.Contains(txt, "-- +goose Up") {
			return fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
		}
		if !strings.Contains(txt, "-- +goose Down") {
			return fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
		}
	}

	return nil
}

// ValidateParity checks every driver directory under base and requires the
// same set of migration versions in each.
func ValidateParity(base string, drivers ...string) error {
	var reference map[string]struct{}
	var referenceDriver string
	for _, driver := range drivers {
		dir := DialectDir(base, driver)
		if err := ValidateDir(dir); err != nil {
			return err
		}
		versions, err := versionsIn(dir)
		if err != nil {
			return err
		}
		if reference == nil {
			reference, referenceDriver = versions, driver
			continue
		}
		for v := range reference {
			if _, ok := versions[v]; !ok {
				return fmt.Errorf("migration %s present for %s but missing for %s", v, referenceDriver, driver)
			}
		}
		for v := range versions {
			if _, ok := reference[v]; !ok {
				return fmt.Errorf("migration %s present for %s but missing for %s", v, driver, referenceDriver)
			}
		}
	}
	return nil
}

func versionsIn(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}
	out := map[string]struct{}{}
	for _, e := range entries {
		if m := sqlFileRe.FindStringSubmatch(e.Name()); m != nil {
			out[m[1]] = struct{}{}
		}
	}
	return out, nil
}
