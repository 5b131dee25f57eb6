package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"sketchrender/internal/http/handlers"
	"sketchrender/internal/middleware"
)

func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer, middleware.Logger(app.Logger))

	r.Get("/healthCheck", app.Health)
	r.Post("/generateImage", app.GenerateImage)

	return r
}
