package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"sketchrender/internal/generate"
	"sketchrender/internal/infra/geoip"
)

// ImageGenerator is the slice of the orchestrator the handlers depend on.
type ImageGenerator interface {
	HandleGeneration(ctx context.Context, req generate.Request) (*generate.Artifact, error)
}

// App bundles the handler dependencies.
type App struct {
	Generator ImageGenerator
	Resolver  geoip.ContinentResolver
	Logger    zerolog.Logger
}

func NewApp(gen ImageGenerator, resolver geoip.ContinentResolver, logger zerolog.Logger) *App {
	return &App{Generator: gen, Resolver: resolver, Logger: logger}
}

func (a *App) text(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}
