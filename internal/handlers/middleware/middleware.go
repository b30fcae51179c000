package middleware

import (
	"zappygames/config"
	"zappygames/internal/gateway"
	"zappygames/internal/session"

	logger "github.com/Bparsons0904/goLogger"
)

type Middleware struct {
	sessions *session.Service
	gateway  gateway.Gateway
	Config   config.Config
	log      logger.Logger
}

func New(
	sessions *session.Service,
	gw gateway.Gateway,
	config config.Config,
) Middleware {
	log := logger.New("middleware")

	return Middleware{
		sessions: sessions,
		gateway:  gw,
		Config:   config,
		log:      log,
	}
}
