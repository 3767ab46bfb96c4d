// Package dbpool manages the Postgres connection pool reserved for owner and
// user data (spec.md §7 — out of scope for this release except as an
// interface). No handler reads from it yet; it exists so the surface is in
// place ahead of the owners/search endpoints growing real backing data.
package dbpool

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"path"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/remind101/migrate"
	"github.com/rs/zerolog"
)

// OwnerDB is the pool backing the owners/users tables.
type OwnerDB pgxpool.Pool

//go:embed migrations
var migrations embed.FS

// Open connects a pool to connString.
func Open(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Init runs pending migrations against pool and returns it as an OwnerDB.
func Init(ctx context.Context, pool *pgxpool.Pool) (*OwnerDB, error) {
	const table = "registry_owner_migrations"
	if err := runMigrations(ctx, table, migrations, pool.Config().ConnConfig); err != nil {
		return nil, err
	}
	return (*OwnerDB)(pool), nil
}

func runMigrations(ctx context.Context, table string, sys fs.FS, cfg *pgx.ConnConfig) error {
	log := zerolog.Ctx(ctx).With().Str("component", "dbpool").Str("table", table).Logger()

	var ms []migrate.Migration
	err := fs.WalkDir(sys, ".", func(p string, ent fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ent.IsDir() {
			return nil
		}
		if ok, _ := path.Match("*.sql", ent.Name()); !ok {
			return nil
		}
		b, err := fs.ReadFile(sys, p)
		if err != nil {
			return err
		}
		fn := ent.Name()
		i := len(ms) + 1
		ms = append(ms, migrate.Migration{
			ID: i,
			Up: func(tx *sql.Tx) error {
				log.Debug().Str("migration", fn).Int("n", i).Msg("migration start")
				_, err := tx.Exec(string(b))
				log.Debug().Str("migration", fn).Int("n", i).Err(err).Msg("migration done")
				return err
			},
		})
		return nil
	})
	log.Info().Int("count", len(ms)).Err(err).Msg("migrations queued")
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", stdlib.RegisterConnConfig(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	migrator := migrate.NewPostgresMigrator(db)
	migrator.Table = table
	err = migrator.Exec(migrate.Up, ms...)
	log.Info().Int("count", len(ms)).Err(err).Msg("migrations done")
	return err
}
