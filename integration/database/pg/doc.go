// Package pg connects to PostgreSQL through pgx and applies goose migrations.
//
// Connect builds a pgxpool.Pool from Config, retrying the initial ping with
// a doubling interval. Migrate runs embedded goose migrations through pgx's
// database/sql adapter. Healthcheck returns a ping function for readiness
// probes.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, pgstore.Migrations, log); err != nil {
//		return err
//	}
//
// InTx wraps a unit of work in a transaction with the requested isolation
// level. IsSerializationFailure recognizes the 40001 and 40P01 aborts that
// SERIALIZABLE transactions must expect.
package pg
