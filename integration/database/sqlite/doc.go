// Package sqlite opens embedded SQLite databases through modernc.org/sqlite
// and applies goose migrations to them.
//
// The DSN enables WAL journaling, a busy timeout, and BEGIN IMMEDIATE for
// every transaction so writers serialize at BEGIN instead of failing on
// lock upgrade.
//
//	db, err := sqlite.Open(ctx, sqlite.Config{Path: "leaderboard.db"})
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	if err := sqlite.Migrate(ctx, db, sqlitestore.Migrations, log); err != nil {
//		return err
//	}
package sqlite
