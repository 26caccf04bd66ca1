// Package web serves the portfolio dashboard and its JSON API.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/chart"
	"github.com/etnz/cryptofolio/coingecko"
	"github.com/etnz/cryptofolio/poller"
	"github.com/etnz/cryptofolio/store"
	"github.com/etnz/cryptofolio/tracker"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templates embed.FS

// Config holds the dashboard settings.
type Config struct {
	Addr       string
	Release    bool
	Interval   time.Duration // default auto-update interval
	MaxUpdates int
	// Settings returns the configuration shown on the settings page.
	Settings func() ([]byte, error)
}

// Server is the dashboard.
type Server struct {
	t      *tracker.Tracker
	cfg    Config
	log    *slog.Logger
	engine *gin.Engine
	pages  map[string]*template.Template
	md     goldmark.Markdown

	mu     sync.Mutex
	poller *poller.Poller
}

// New returns a Server on top of t.
func New(t *tracker.Tracker, cfg Config, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	s := &Server{
		t:     t,
		cfg:   cfg,
		log:   log,
		pages: pages,
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
	s.engine = s.routes()
	return s, nil
}

var pageNames = []string{"portfolio", "entry", "analysis", "visualization", "settings", "message"}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").ParseFS(templates, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return pages, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/portfolio") })
	r.GET("/portfolio", s.portfolioPage)

	r.GET("/purchases/new", s.newPurchasePage)
	r.POST("/purchases", s.createPurchase)
	r.GET("/staking/new", s.newStakingPage)
	r.POST("/staking", s.createStaking)
	r.GET("/entries/:id/edit", s.editEntryPage)
	r.POST("/entries/:id", s.updateEntry)
	r.POST("/entries/:id/delete", s.deleteEntry)

	r.GET("/analysis", s.analysisPage)
	r.POST("/autoupdate/start", s.startAutoUpdate)
	r.POST("/autoupdate/stop", s.stopAutoUpdate)

	r.GET("/visualization", s.visualizationPage)
	charts := r.Group("/charts")
	charts.GET("/history/:symbol", s.historyChart)
	charts.GET("/market/:coin", s.marketChart)
	charts.GET("/pie/:by", s.shareChart(chart.Pie))
	charts.GET("/bar/:by", s.shareChart(chart.Bar))
	charts.GET("/timeline", s.timelineChart)

	r.GET("/settings", s.settingsPage)
	r.GET("/settings/export", s.exportEntries)
	r.POST("/settings/vacuum", s.vacuum)

	api := r.Group("/api")
	api.GET("/entries", s.apiEntries)
	api.GET("/entries/:id", s.apiEntry)
	api.POST("/entries", s.apiCreateEntry)
	api.DELETE("/entries/:id", s.apiDeleteEntry)
	api.GET("/analysis", s.apiAnalysis)
	api.GET("/summary", s.apiSummary)
	api.GET("/autoupdate", s.apiAutoUpdate)
	api.POST("/autoupdate/start", s.apiStartAutoUpdate)
	api.POST("/autoupdate/stop", s.apiStopAutoUpdate)

	r.GET("/healthz", s.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// Handler returns the http.Handler of the dashboard.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is done, then stops the auto-update and shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("dashboard listening", "addr", "http://"+s.cfg.Addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.stopPoller()
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	s.log.Info("dashboard stopped")
	return nil
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debug("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start))
}

// page is the data of every page.
type page struct {
	Title   string
	Active  string
	Flash   string
	Error   string
	Content any
}

func (s *Server) render(c *gin.Context, code int, name string, p page) {
	if p.Active == "" {
		p.Active = name
	}
	c.Render(code, render.HTML{Template: s.pages[name], Name: "layout.html", Data: p})
}

// html converts a markdown report to HTML.
func (s *Server) html(markdown string) template.HTML {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(markdown))
	}
	return template.HTML(buf.String())
}

// status maps an error to an HTTP status code.
func status(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, chart.ErrNotEnoughData):
		return http.StatusNotFound
	case errors.Is(err, cryptofolio.ErrInvalidEntry), errors.Is(err, coingecko.ErrInvalidPeriod), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, poller.ErrRunning):
		return http.StatusConflict
	case errors.Is(err, tracker.ErrNoChartProvider):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail shows err on the message page.
func (s *Server) fail(c *gin.Context, err error) {
	code := status(err)
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	s.render(c, code, "message", page{Title: http.StatusText(code), Error: err.Error()})
}

// failJSON writes err as a JSON error.
func (s *Server) failJSON(c *gin.Context, err error) {
	code := status(err)
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func (s *Server) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.t.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
