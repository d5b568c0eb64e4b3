package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// migrationExt is the file extension of SurrealQL migration files
const migrationExt = ".surql"

// seedFile holds development data and is never applied as a migration
const seedFile = "seed.surql"

// Migration is one schema file, applied in lexical order of Name
type Migration struct {
	Name string
	SQL  string
}

// LoadMigrations reads all .surql files in dir sorted by name
func LoadMigrations(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, migrationExt) || name == seedFile {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		migrations = append(migrations, Migration{Name: name, SQL: string(content)})
	}

	return migrations, nil
}

// Migrate applies every migration in dir. Migration files must be
// idempotent (DEFINE ... IF NOT EXISTS) since they run on every start.
func Migrate(ctx context.Context, db Database, dir string) error {
	migrations, err := LoadMigrations(dir)
	if err != nil {
		return err
	}
	return Apply(ctx, db, migrations)
}

// Apply executes the given migrations in order, stopping at the first failure
func Apply(ctx context.Context, db Database, migrations []Migration) error {
	for _, m := range migrations {
		if err := db.Execute(ctx, m.SQL, nil); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.Name, err)
		}
	}
	return nil
}
