package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the schema migrations, registered from timestamp-named files in this package.
var Migrations = migrate.NewMigrations()
