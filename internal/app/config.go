package app

import (
	"github.com/avelldro/converse-backend/internal/platform/envutil"
	"github.com/avelldro/converse-backend/internal/platform/logger"
)

type Config struct {
	JWTSecretKey string

	// ContextWindow is the number of newest turns sent to the provider.
	ContextWindow   int
	MaxContentChars int

	// RespondDedupe short-circuits a redelivered respond job when an
	// assistant turn already follows the user turn. Off by default:
	// at-least-once delivery then means at-least-one reply.
	RespondDedupe bool
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		JWTSecretKey:    envutil.Str("JWT_SECRET_KEY", "defaultsecret"),
		ContextWindow:   envutil.Int("RESPOND_CONTEXT_WINDOW", 10),
		MaxContentChars: envutil.Int("MAX_CONTENT_CHARS", 20000),
		RespondDedupe:   envutil.Bool("RESPOND_DEDUPE", false),
	}
	if log != nil {
		log.Debug("config loaded",
			"context_window", cfg.ContextWindow,
			"max_content_chars", cfg.MaxContentChars,
			"respond_dedupe", cfg.RespondDedupe,
		)
	}
	return cfg
}
