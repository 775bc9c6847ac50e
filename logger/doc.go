// Package logger provides structured logging on top of zerolog.
//
// It supports JSON and console output, level configuration, component-scoped
// loggers and request-scoped fields carried in a context.Context.
//
//	log := logger.NewDefault("errdemo").WithComponent("server")
//	log.Info("listening", logger.Fields("addr", ":8080"))
package logger
