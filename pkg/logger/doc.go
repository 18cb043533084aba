// Package logger provides structured logging for the profile scraping
// service, built on top of zerolog.
//
// A single Logger interface is used throughout the codebase so that
// components can be tested without a concrete zerolog instance. Fields can
// be attached per call or accumulated with WithField/WithFields:
//
//	log := logger.GetLogger()
//	log.InfoWithFields("snapshot persisted", map[string]interface{}{
//		"username": "example",
//		"status":   "success",
//	})
//
// The global instance is configured once at startup via Initialize; before
// that, GetLogger falls back to an info-level console logger.
package logger
