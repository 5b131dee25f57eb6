package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sketchrender/internal/compose"
	"sketchrender/internal/generate"
)

// maxSketchBytes caps the uploaded sketch size.
const maxSketchBytes = 32 << 20

// GenerateImage handles POST /generateImage. Credentials come from HTTP
// Basic auth, with a fallback to the username/usernumber form fields for
// older clients.
func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSketchBytes); err != nil {
		a.text(w, http.StatusBadRequest, "Invalid multipart form!")
		return
	}

	identity, secret, ok := r.BasicAuth()
	if !ok {
		identity = r.FormValue("username")
		secret = r.FormValue("usernumber")
	}

	file, header, err := r.FormFile("sketch")
	if err != nil {
		a.text(w, http.StatusBadRequest, "Missing sketch image!")
		return
	}
	defer file.Close()
	sketch, err := io.ReadAll(file)
	if err != nil {
		a.text(w, http.StatusBadRequest, "Could not read sketch image!")
		return
	}

	req := generate.Request{
		Identity:         identity,
		Secret:           secret,
		Sketch:           sketch,
		SketchFilename:   header.Filename,
		Architect:        r.FormValue("architect"),
		Region:           a.resolveRegion(r),
		BuildingType:     r.FormValue("buildingtype"),
		InteriorExterior: r.FormValue("imagetype"),
		Atmosphere:       r.FormValue("atmosphere"),
		AspectRatio:      r.FormValue("ratio"),
		Resolution:       r.FormValue("resolution"),
		Bundle:           strings.EqualFold(r.FormValue("bundle"), "zip"),
	}

	artifact, err := a.Generator.HandleGeneration(r.Context(), req)
	if err != nil {
		a.writeGenerationError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", artifact.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", artifact.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}

// resolveRegion maps the subregion field onto the composer's region input.
// "auto" derives the region from the client IP's continent when a GeoIP
// database is configured; anything unresolvable falls back to a random
// region.
func (a *App) resolveRegion(r *http.Request) string {
	region := strings.TrimSpace(r.FormValue("subregion"))
	if !strings.EqualFold(region, "auto") {
		return region
	}
	if a.Resolver == nil {
		return ""
	}
	continent, err := a.Resolver.Continent(clientIP(r))
	if err != nil || continent == "" {
		return ""
	}
	return continent
}

func (a *App) writeGenerationError(w http.ResponseWriter, r *http.Request, err error) {
	var throttled *generate.ThrottledError
	var enumErr *compose.InvalidEnumError
	switch {
	case errors.Is(err, generate.ErrAuthFailed):
		a.text(w, http.StatusForbidden, "Invalid username or password!")
	case errors.As(err, &throttled):
		total := ceilSeconds(throttled.RetryAfter)
		w.Header().Set("Retry-After", strconv.Itoa(total))
		a.text(w, http.StatusTooManyRequests, fmt.Sprintf(
			"You have to wait... Current wait time is %d minutes and %d seconds", total/60, total%60))
	case errors.As(err, &enumErr):
		a.text(w, http.StatusBadRequest, enumErr.Error())
	case errors.Is(err, generate.ErrNoArtifacts):
		a.text(w, http.StatusInternalServerError, "No generated image!")
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("generation failed")
		a.text(w, http.StatusBadGateway, "Image pipeline failed!")
	}
}

func ceilSeconds(d time.Duration) int {
	total := int(d / time.Second)
	if d%time.Second > 0 {
		total++
	}
	return total
}
