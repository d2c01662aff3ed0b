// Package logger provides zerolog-backed structured logging for multimongo.
//
// A process-wide logger is configured once with Init; packages obtain
// component-scoped loggers with Get and attach structured fields with Fields.
//
//	logger:
//	  level: "debug"
//	  format: "json"
//
//	log := logger.Get("autoconfig")
//	log.Info("bean registered", logger.Fields(logger.FieldBean, "primary_mongo_client"))
package logger
