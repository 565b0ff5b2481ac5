package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/dvalenzuela/retrade-backend/api/responses"
	"github.com/dvalenzuela/retrade-backend/pkg/config"
	pkgerrors "github.com/dvalenzuela/retrade-backend/pkg/errors"
	"github.com/dvalenzuela/retrade-backend/pkg/logger"
)

const envHeader = "X-Retrade-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every backing dependency; a nil pinger is skipped, which
// covers the file/memory cart backends where redis is not wired.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "down"
				responses.WriteError(ctx, logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency not ready").
						WithDetails(map[string]any{"dependency": name}))
				return
			}
			checks[name] = "up"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

// ReadyDeps packages the named health check dependencies for HealthReady.
func ReadyDeps(dbP pinger, redisP pinger) map[string]pinger {
	return map[string]pinger{
		"database": dbP,
		"redis":    redisP,
	}
}
