// Package logger builds log/slog loggers and provides attribute helpers.
//
//	log := logger.New(
//		logger.WithProduction("leaderboard"),
//		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
//	)
//	log.Info("server starting", logger.Component("http"), logger.Event("startup"))
//	log.Error("admission failed", logger.Error(err))
//
// Helpers return an empty slog.Attr for nil or empty values, which slog
// omits from the record.
package logger
