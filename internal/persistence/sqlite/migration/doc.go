// Package migration applies versioned SQL files to a SQLite database.
//
// Migration files follow the naming convention {version}_{description}.sql
// (for example "001_initial_schema.sql") and are read from an fs.FS, which is
// normally an embedded directory compiled into the binary. Applied versions are
// tracked in a schema_migrations table together with the file checksum so that
// edits to an already applied file are detected on the next start.
//
//	manager := migration.NewManager(migration.NewFSScanner(files, "migrations"), migration.NewSQLiteExecutor(db), logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
