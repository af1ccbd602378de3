package deps

import (
	"github.com/dchamindu826/Rider-App/internal/auth"
	"github.com/dchamindu826/Rider-App/internal/session"
	"go.uber.org/zap"
)

type Deps struct {
	Logger       *zap.SugaredLogger
	TokenManager *auth.TokenManager
	Sessions     session.Store
}

func NewDependencies(logger *zap.SugaredLogger, secretKey string, sessions session.Store) *Deps {
	return &Deps{
		Logger:       logger,
		TokenManager: auth.NewTokenManager(secretKey),
		Sessions:     sessions,
	}
}
