package migrate

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var migrationNameRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)

const (
	annotationUp    = "-- +goose Up"
	annotationDown  = "-- +goose Down"
	annotationBegin = "-- +goose StatementBegin"
	annotationEnd   = "-- +goose StatementEnd"
)

// ValidateDir checks the migration files stored in dir.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("migrations dir: %w", err)
	}
	return ValidateFS(os.DirFS(dir))
}

// ValidateFS checks naming, ordering and goose annotations for every .sql file at the root of fsys.
// Versions must be real timestamps and strictly increasing.
func ValidateFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	var previous string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		version, err := fileVersion(name)
		if err != nil {
			return err
		}
		if version <= previous {
			return fmt.Errorf("migration %q does not sort after version %s", name, previous)
		}
		previous = version

		if err := checkAnnotations(fsys, name); err != nil {
			return err
		}
	}
	return nil
}

func fileVersion(name string) (string, error) {
	m := migrationNameRe.FindStringSubmatch(name)
	if m == nil {
		return "", fmt.Errorf("invalid migration filename %q (expected %s_name.sql)", name, versionLayout)
	}
	if _, err := time.Parse(versionLayout, m[1]); err != nil {
		return "", fmt.Errorf("migration %q has an invalid timestamp", name)
	}
	return m[1], nil
}

// checkAnnotations requires Up before Down and balanced statement blocks inside each section.
func checkAnnotations(fsys fs.FS, name string) error {
	f, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}
	defer f.Close()

	var sawUp, sawDown, inBlock bool
	line := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line++
		switch strings.TrimSpace(scanner.Text()) {
		case annotationUp:
			if sawUp {
				return fmt.Errorf("%s:%d: repeated Up section", name, line)
			}
			sawUp = true
		case annotationDown:
			if !sawUp {
				return fmt.Errorf("%s:%d: Down section before Up", name, line)
			}
			if inBlock {
				return fmt.Errorf("%s:%d: Up statement block left open", name, line)
			}
			sawDown = true
		case annotationBegin:
			if inBlock {
				return fmt.Errorf("%s:%d: nested StatementBegin", name, line)
			}
			inBlock = true
		case annotationEnd:
			if !inBlock {
				return fmt.Errorf("%s:%d: StatementEnd without StatementBegin", name, line)
			}
			inBlock = false
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %q: %w", name, err)
	}

	switch {
	case !sawUp:
		return fmt.Errorf("migration %q missing %q", name, annotationUp)
	case !sawDown:
		return fmt.Errorf("migration %q missing %q", name, annotationDown)
	case inBlock:
		return fmt.Errorf("migration %q ends inside a statement block", name)
	}
	return nil
}
