package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"slidecast/app/internal/db"
	"slidecast/app/internal/deck"
	"slidecast/app/internal/http/templates"
)

const (
	htmlContentType      = "text/html; charset=utf-8"
	markdownContentType  = "text/markdown; charset=utf-8"
	errorFallbackMessage = "We couldn't process your request right now."
)

type htmlResponse struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Location    string `header:"Location"`
	Body        []byte
}

type slideInput struct {
	Index int `path:"index"`
}

type healthResponse struct {
	Status int
	Body   struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Deck     string `json:"deck"`
		Slides   int    `json:"slides"`
	}
}

func (s *Server) registerHomeRoute() {
	huma.Get(s.api, "/", s.homeHandler, htmlOperation("Current slide", stdhttp.StatusServiceUnavailable, stdhttp.StatusInternalServerError))
}

func (s *Server) registerSlideRoute() {
	huma.Get(s.api, "/slides/{index}", s.slideHandler, htmlOperation(
		"Jump to slide",
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerNextRoute() {
	huma.Get(s.api, "/next", s.nextHandler, htmlOperation("Advance one slide", stdhttp.StatusFound))
}

func (s *Server) registerPrevRoute() {
	huma.Get(s.api, "/prev", s.prevHandler, htmlOperation("Retreat one slide", stdhttp.StatusFound))
}

func (s *Server) registerOverviewRoute() {
	huma.Get(s.api, "/overview", s.overviewHandler, htmlOperation(
		"Deck overview",
		stdhttp.StatusServiceUnavailable,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerExportRoute() {
	huma.Get(s.api, "/export", s.exportHandler, htmlOperation(
		"Export canonical deck source",
		stdhttp.StatusServiceUnavailable,
	))
}

func (s *Server) registerReloadRoute() {
	huma.Post(s.api, "/reload", s.reloadHandler, htmlOperation(
		"Reload the deck source",
		stdhttp.StatusFound,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

func (s *Server) homeHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	slide, pos := s.decks.Current()
	if pos.Total == 0 {
		err := eris.Wrap(deck.ErrNotLoaded, "serving current slide")
		s.recordError(ctx, err, "deck not loaded", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusServiceUnavailable, "The deck is still loading. Try again in a moment.")
	}

	return s.renderSlideResponse(ctx, slide, pos)
}

func (s *Server) slideHandler(ctx context.Context, input *slideInput) (*htmlResponse, error) {
	slide, pos, err := s.decks.JumpTo(ctx, input.Index)
	if err != nil {
		status, message := classifyError(err)
		s.recordError(ctx, err, "jumping to slide", logrus.Fields{"index": input.Index})
		return s.renderErrorResponse(ctx, status, message)
	}

	return s.renderSlideResponse(ctx, slide, pos)
}

func (s *Server) nextHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	s.decks.Advance(ctx)

	response := newHTMLResponse(stdhttp.StatusFound, nil)
	response.Location = "/"
	return response, nil
}

func (s *Server) prevHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	s.decks.Retreat(ctx)

	response := newHTMLResponse(stdhttp.StatusFound, nil)
	response.Location = "/"
	return response, nil
}

func (s *Server) overviewHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	loaded := s.decks.Deck()
	if loaded == nil {
		err := eris.Wrap(deck.ErrNotLoaded, "serving overview")
		s.recordError(ctx, err, "deck not loaded", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusServiceUnavailable, "The deck is still loading. Try again in a moment.")
	}

	data := templates.OverviewPageData{
		Title:     fmt.Sprintf("Overview • %s", deckTitle(loaded)),
		DeckTitle: deckTitle(loaded),
		Items:     make([]templates.OverviewItem, 0, loaded.Len()),
	}
	for i, slide := range loaded.Slides {
		title := slide.Title
		if title == "" {
			title = fmt.Sprintf("Slide %d", i+1)
		}
		data.Items = append(data.Items, templates.OverviewItem{
			Index:  i,
			Title:  title,
			Layout: string(slide.Layout),
		})
	}

	body, err := renderComponent(ctx, templates.OverviewPage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering overview page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render the overview right now.")
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) exportHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	source, err := s.decks.Export()
	if err != nil {
		status, message := classifyError(err)
		s.recordError(ctx, err, "exporting deck source", nil)
		return s.renderErrorResponse(ctx, status, message)
	}

	response := newHTMLResponse(stdhttp.StatusOK, []byte(source))
	response.ContentType = markdownContentType
	return response, nil
}

func (s *Server) reloadHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	if err := s.decks.Reload(ctx); err != nil {
		s.recordError(ctx, err, "reloading deck", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't reload the deck source.")
	}

	response := newHTMLResponse(stdhttp.StatusFound, nil)
	response.Location = "/"
	return response, nil
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{}
	resp.Body.Status = "ok"
	resp.Body.Database = "ok"
	resp.Body.Deck = "loaded"

	sqlDB, err := db.SQLDB(s.db)
	if err != nil {
		s.recordError(ctx, err, "obtaining sql db", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	} else if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
		s.recordError(ctx, pingErr, "pinging database", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	}

	loaded := s.decks.Deck()
	if loaded == nil {
		resp.Body.Status = "degraded"
		resp.Body.Deck = "not loaded"
		if resp.Status == 0 {
			resp.Status = stdhttp.StatusServiceUnavailable
		}
	} else {
		resp.Body.Slides = loaded.Len()
	}

	if resp.Status == 0 {
		resp.Status = stdhttp.StatusOK
	}

	return resp, nil
}

func (s *Server) renderSlideResponse(ctx context.Context, slide deck.Slide, pos deck.Position) (*htmlResponse, error) {
	bodyHTML, err := s.renderer.Slide(slide)
	if err != nil {
		s.recordError(ctx, err, "rendering slide body", logrus.Fields{"index": pos.Index})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render this slide.")
	}

	loaded := s.decks.Deck()
	title := slide.Title
	if title == "" {
		title = fmt.Sprintf("Slide %d", pos.Index+1)
	}

	data := templates.SlidePageData{
		Title:     fmt.Sprintf("%s • %s", title, deckTitle(loaded)),
		DeckTitle: deckTitle(loaded),
		Layout:    string(slide.Layout),
		BodyHTML:  bodyHTML,
		Image:     slide.Meta["image"],
		Caption:   slide.Meta["caption"],
		Index:     pos.Index,
		Total:     pos.Total,
	}

	body, err := renderComponent(ctx, templates.SlidePage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering slide page", logrus.Fields{"index": pos.Index})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render this slide.")
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func deckTitle(loaded *deck.Deck) string {
	if loaded == nil || loaded.Config.Title == "" {
		return "Slidecast"
	}
	return loaded.Config.Title
}

func newHTMLResponse(status int, body []byte) *htmlResponse {
	return &htmlResponse{
		Status:      status,
		ContentType: htmlContentType,
		Body:        body,
	}
}

func htmlOperation(summary string, statuses ...int) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		if summary != "" {
			op.Summary = summary
		}
		if op.Responses == nil {
			op.Responses = map[string]*huma.Response{}
		}

		statusCodes := append([]int{stdhttp.StatusOK}, statuses...)
		for _, status := range statusCodes {
			code := strconv.Itoa(status)
			op.Responses[code] = &huma.Response{
				Description: stdhttp.StatusText(status),
				Content: map[string]*huma.MediaType{
					htmlContentType: {
						Schema: &huma.Schema{Type: "string"},
					},
				},
			}
		}
	}
}

func classifyError(err error) (int, string) {
	switch {
	case err == nil:
		return stdhttp.StatusInternalServerError, errorFallbackMessage
	case eris.Is(err, deck.ErrOutOfRange):
		return stdhttp.StatusNotFound, "That slide doesn't exist. Pick one from the overview."
	case eris.Is(err, deck.ErrNotLoaded):
		return stdhttp.StatusServiceUnavailable, "The deck is still loading. Try again in a moment."
	default:
		return stdhttp.StatusInternalServerError, errorFallbackMessage
	}
}

func (s *Server) renderErrorResponse(ctx context.Context, status int, message string) (*htmlResponse, error) {
	label := fmt.Sprintf("%d %s", status, stdhttp.StatusText(status))
	title := fmt.Sprintf("%s • Slidecast", label)
	component := templates.ErrorPage(templates.ErrorPageData{
		Title:       title,
		StatusLabel: label,
		Message:     message,
	})

	body, err := renderComponent(ctx, component)
	if err != nil {
		s.recordError(ctx, err, "rendering error page", logrus.Fields{"status": status})
		fallback := []byte(fmt.Sprintf("<html><body><h1>%s</h1><p>%s</p></body></html>", label, message))
		return newHTMLResponse(status, fallback), nil
	}

	return newHTMLResponse(status, body), nil
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}
