package lib

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
)

type Migration struct {
	Name    string
	UpSQL   string
	DownSQL string
}

func ReadMigrationsDir(dir string) ([]*Migration, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	migrations := map[string]*Migration{}

	withMigration := func(name string) *Migration {
		m, ok := migrations[name]
		if !ok {
			m = &Migration{
				Name: name,
			}
			migrations[name] = m
		}
		return m
	}

	// Load all migration files into migrations map
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".sql" {
			continue
		}
		bytes, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, err
		}

		name, isUp := parseMigrationFileName(file.Name())
		migration := withMigration(name)
		if isUp {
			migration.UpSQL = string(bytes)
		} else {
			migration.DownSQL = string(bytes)
		}
	}

	// Sort keys lexicographically
	keys := []string{}
	for k := range migrations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Make result slice
	result := []*Migration{}
	for _, k := range keys {
		result = append(result, migrations[k])
	}
	return result, nil
}

func parseMigrationFileName(fileName string) (string, bool) {
	return getMigrationName(fileName), getUpness(fileName)
}

func getMigrationName(fileName string) string {
	dotParts := strings.Split(fileName, ".")
	return dotParts[0]
}

func getUpness(fileName string) bool {
	return !strings.HasSuffix(fileName, ".down.sql")
}

// RunMigrations applies every migration in dir that the database has not
// seen yet and returns the names it applied.
func RunMigrations(ctx context.Context, dir string, connectionString string) ([]string, error) {
	migrations, err := ReadMigrationsDir(dir)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return Migrate(ctx, db, migrations)
}

func Migrate(ctx context.Context, db *sql.DB, migrations []*Migration) ([]string, error) {
	err := requireMigrationsTable(ctx, db)
	if err != nil {
		return nil, err
	}

	done, err := appliedMigrations(ctx, db)
	if err != nil {
		return nil, err
	}

	applied := []string{}
	for _, migration := range migrations {
		if done[migration.Name] {
			continue
		}
		err = execMigration(ctx, db, migration)
		if err != nil {
			return applied, err
		}
		applied = append(applied, migration.Name)
	}

	return applied, nil
}

func requireMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS schema_migrations (name TEXT PRIMARY KEY, applied_at TIMESTAMP WITH TIME ZONE NOT NULL)")
	return err
}

func appliedMigrations(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	done := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		done[name] = true
	}
	return done, rows.Err()
}

func execMigration(ctx context.Context, db *sql.DB, migration *Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, migration.UpSQL); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (name, applied_at) VALUES ($1, now())", migration.Name)
	if err != nil {
		return err
	}
	return tx.Commit()
}
