package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where the schema files live relative to the repository root.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Embedded returns the schema files compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Step describes one migration touched or inspected by a command.
type Step struct {
	Version   int64
	Path      string
	State     string
	Duration  time.Duration
	AppliedAt time.Time
}

func (s Step) String() string {
	switch {
	case !s.AppliedAt.IsZero():
		return fmt.Sprintf("%-8s %s (%s)", s.State, s.Path, s.AppliedAt.Format(time.RFC3339))
	case s.Duration > 0:
		return fmt.Sprintf("%-8s %s in %s", s.State, s.Path, s.Duration.Round(time.Millisecond))
	default:
		return fmt.Sprintf("%-8s %s", s.State, s.Path)
	}
}

// Migrator applies the ShareIt schema to a Postgres database.
type Migrator struct {
	provider *goose.Provider
}

// Open builds a Migrator over the files in dir. An empty dir selects the embedded files.
// The caller keeps ownership of db.
func Open(db *sql.DB, dir string) (*Migrator, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	fsys := Embedded()
	if dir != "" {
		fsys = os.DirFS(dir)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Migrator{provider: provider}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) ([]Step, error) {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose up: %w", err)
	}
	return resultSteps(results), nil
}

// Down reverts the most recent migration.
func (m *Migrator) Down(ctx context.Context) ([]Step, error) {
	result, err := m.provider.Down(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose down: %w", err)
	}
	return resultSteps([]*goose.MigrationResult{result}), nil
}

// To moves the schema up or down until target is the current version.
func (m *Migrator) To(ctx context.Context, target int64) ([]Step, error) {
	current, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("get db version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case current == target:
		return nil, nil
	case current < target:
		results, err = m.provider.UpTo(ctx, target)
	default:
		results, err = m.provider.DownTo(ctx, target)
	}
	if err != nil {
		return nil, fmt.Errorf("goose migrate %d -> %d: %w", current, target, err)
	}
	return resultSteps(results), nil
}

// Status lists every known migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]Step, error) {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose status: %w", err)
	}
	steps := make([]Step, 0, len(statuses))
	for _, st := range statuses {
		if st == nil || st.Source == nil {
			continue
		}
		steps = append(steps, Step{
			Version:   st.Source.Version,
			Path:      st.Source.Path,
			State:     string(st.State),
			AppliedAt: st.AppliedAt,
		})
	}
	return steps, nil
}

// Run dispatches one of up, down or status against the files in dir.
func Run(ctx context.Context, db *sql.DB, dir, command string) ([]Step, error) {
	m, err := Open(db, dir)
	if err != nil {
		return nil, err
	}
	switch command {
	case "up":
		return m.Up(ctx)
	case "down":
		return m.Down(ctx)
	case "status":
		return m.Status(ctx)
	default:
		return nil, fmt.Errorf("unsupported migrate command %q", command)
	}
}

// MigrateToVersion parses a YYYYMMDDHHMMSS version and migrates the schema to it.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir, version string) ([]Step, error) {
	target, err := ParseVersion(version)
	if err != nil {
		return nil, err
	}
	m, err := Open(db, dir)
	if err != nil {
		return nil, err
	}
	return m.To(ctx, target)
}

// ParseVersion accepts the timestamp prefix used by migration filenames.
func ParseVersion(raw string) (int64, error) {
	if _, err := time.Parse(versionLayout, raw); err != nil {
		return 0, fmt.Errorf("invalid version %q (expected %s)", raw, versionLayout)
	}
	return strconv.ParseInt(raw, 10, 64)
}

func resultSteps(results []*goose.MigrationResult) []Step {
	steps := make([]Step, 0, len(results))
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		steps = append(steps, Step{
			Version:  res.Source.Version,
			Path:     res.Source.Path,
			State:    res.Direction,
			Duration: res.Duration,
		})
	}
	return steps
}
