package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmylchreest/skytint/internal/artwork"
	"github.com/jmylchreest/skytint/internal/colour"
	"github.com/jmylchreest/skytint/internal/festival"
	"github.com/jmylchreest/skytint/internal/theme"
	"github.com/jmylchreest/skytint/internal/version"
)

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: version.Short()})
}

// OnColourResponse is returned by GET /api/on-colour.
type OnColourResponse struct {
	Background string  `json:"background"`
	Kind       string  `json:"kind"`
	OnColour   string  `json:"onColour"`
	Contrast   float64 `json:"contrast"`
}

// onColour answers for any bg, including a missing one, which yields black.
func (s *Server) onColour(c echo.Context) error {
	bg := c.QueryParam("bg")
	return c.JSON(http.StatusOK, OnColourResponse{
		Background: bg,
		Kind:       colour.ParseColourValue(bg).Kind.String(),
		OnColour:   colour.ReadableOnColour(bg),
		Contrast:   colour.OnColourContrast(bg),
	})
}

// FestivalView is a festival with its readable on-colour resolved.
type FestivalView struct {
	festival.Festival
	City     string `json:"city"`
	OnColour string `json:"onColour"`
}

// FestivalsResponse is returned by GET /api/festivals.
type FestivalsResponse struct {
	City      string         `json:"city"`
	Dates     []string       `json:"dates"`
	Festivals []FestivalView `json:"festivals"`
}

func viewsOf(festivals []festival.Festival) []FestivalView {
	views := make([]FestivalView, len(festivals))
	for i, f := range festivals {
		views[i] = FestivalView{Festival: f, City: f.City(), OnColour: f.OnColour()}
	}
	return views
}

func (s *Server) festivals(c echo.Context) error {
	city := c.QueryParam("city")
	dates := c.QueryParams()["date"]
	if len(dates) == 0 {
		return c.JSON(http.StatusOK, FestivalsResponse{City: city, Dates: []string{}, Festivals: []FestivalView{}})
	}

	sel, err := festival.ParseSelection(dates)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, FestivalsResponse{
		City:      city,
		Dates:     sel.Days(),
		Festivals: viewsOf(s.matcher.ForSelection(city, sel)),
	})
}

// match returns the festivals for city over dates, or none when either is
// missing.
func (s *Server) match(city string, dates []string) ([]festival.Festival, error) {
	if city == "" || len(dates) == 0 {
		return nil, nil
	}
	sel, err := festival.ParseSelection(dates)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return s.matcher.ForSelection(city, sel), nil
}

func (s *Server) theme(c echo.Context) error {
	var spec theme.Spec
	if err := c.Bind(&spec); err != nil {
		return err
	}
	if err := c.Validate(&spec); err != nil {
		return err
	}

	festivals, err := s.match(spec.City, spec.Dates)
	if err != nil {
		return err
	}

	t, err := theme.Derive(spec, festivals)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if c.QueryParam("format") == "css" {
		css, err := theme.RenderCSS(t)
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, "text/css; charset=utf-8", css)
	}
	return c.JSON(http.StatusOK, t)
}

// ArtworkRequest is the body of POST /api/artwork.
type ArtworkRequest struct {
	City  string   `json:"city" validate:"required,max=128"`
	Dates []string `json:"dates" validate:"required,min=1,max=2,dive,datetime=2006-01-02"`
}

// ArtworkResponse is returned by POST /api/artwork.
type ArtworkResponse struct {
	City    string             `json:"city"`
	Artwork []*artwork.Artwork `json:"artwork"`
}

func (s *Server) generateArtwork(c echo.Context) error {
	var req ArtworkRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	festivals, err := s.match(req.City, req.Dates)
	if err != nil {
		return err
	}

	arts, err := s.artwork.ForFestivals(c.Request().Context(), festivals, req.City)
	if err != nil {
		s.log.Error("artwork generation failed", "city", req.City, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "artwork generation failed").SetInternal(err)
	}
	if arts == nil {
		arts = []*artwork.Artwork{}
	}

	return c.JSON(http.StatusOK, ArtworkResponse{City: req.City, Artwork: arts})
}
