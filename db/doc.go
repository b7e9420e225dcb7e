// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and manages the schema.

# Connecting

Open dials PostgreSQL with lib/pq and hands the pool to gorm:

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

OpenWithDialector accepts any gorm dialector. Tests use it with an
in-memory SQLite database so the same queries run without a server.

# Schema

Migrate runs gorm AutoMigrate over models.AllEntities. It is safe to
call on every start.

# Seeding

SeedFeatureToggles inserts the default toggles ("HDR Image Upload",
"Show Datasets") when they are missing. PromoteSuperuser bootstraps an
administrator by email once that user has signed in.

# Errors

Queries run with TranslateError enabled. IsUniqueViolation also checks
the raw SQLSTATE 23505 from lib/pq, since the postgres dialector only
translates pgx errors.
*/
package db
