package logger

import (
	"io"
	"os"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/constants"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New 建立應用程式logger，並同時設定為全域 log.Logger
// debug/development 使用console輸出，其餘環境輸出JSON
func New(env string, level string) zerolog.Logger {
	var w io.Writer = os.Stdout
	switch constants.ENV(env) {
	case constants.Debug, constants.Dev:
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "bookstore").Logger()
	log.Logger = logger
	return logger
}

// Nop 測試用
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
