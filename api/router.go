// Package api exposes the rate explorer over HTTP: stateless paged record
// listing and facet options, plus per-user explorer sessions for search,
// table, chart, and export.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ratetool/facets"
	"ratetool/fetch"
	"ratetool/grouping"
	"ratetool/metrics"
	"ratetool/rates"
	"ratetool/session"
)

// Server holds what every handler shares.
type Server struct {
	combos   []rates.Combination
	resolver *facets.Resolver
	src      fetch.PageSource
	pageSize int
	metrics  *metrics.Metrics
	sessions *sessionStore
	opts     []session.Option
}

// NewServer builds a server over decoded combinations and a record source.
// m may be nil.
func NewServer(combos []rates.Combination, src fetch.PageSource, pageSize int, m *metrics.Metrics, opts ...session.Option) *Server {
	return &Server{
		combos:   combos,
		resolver: facets.NewResolver(combos),
		src:      m.Instrument(src),
		pageSize: pageSize,
		metrics:  m,
		sessions: newSessionStore(),
		opts:     opts,
	}
}

// RouterConfig configures NewRouter.
type RouterConfig struct {
	CORSOrigins []string
	Gatherer    prometheus.Gatherer
}

// NewRouter wires the routes.
func NewRouter(s *Server, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "combinations": s.resolver.Len()})
	})
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/rates", s.ListRates())
		apiGroup.GET("/options", s.ListOptions())

		sessions := apiGroup.Group("/sessions")
		sessions.POST("", s.CreateSession())
		sessions.DELETE("/:id", s.DeleteSession())
		sessions.GET("/:id/options", s.SessionOptions())
		sessions.PUT("/:id/selections/:facet", s.SetSelection())
		sessions.POST("/:id/search", s.Search())
		sessions.GET("/:id/table", s.Table())
		sessions.POST("/:id/chart", s.Chart())
		sessions.GET("/:id/export", s.Export())
	}

	return r
}

// queryCriteria collects the first value of every query parameter. Paging
// parameters ride along and are ignored by criteria parsing.
func queryCriteria(c *gin.Context) map[string]string {
	out := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ListRates serves GET /api/rates: one page of filtered records.
func (s *Server) ListRates() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := intQuery(c, "page", 1)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
			return
		}
		size, ok := intQuery(c, "itemsPerPage", s.pageSize)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid itemsPerPage"})
			return
		}
		criteria := queryCriteria(c)
		if _, err := rates.ParseCriteria(criteria); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := s.src.FetchPage(c.Request.Context(), fetch.Query{Criteria: criteria, Page: page, ItemsPerPage: size})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// ListOptions serves GET /api/options: every facet's options under the
// criteria in the query string.
func (s *Server) ListOptions() gin.HandlerFunc {
	return func(c *gin.Context) {
		sel, err := rates.ParseCriteria(queryCriteria(c))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, optionsJSON(s.resolver.All(sel)))
	}
}

func optionsJSON(all map[rates.Facet][]string) map[string][]string {
	out := make(map[string][]string, len(all))
	for f, vals := range all {
		if vals == nil {
			vals = []string{}
		}
		out[f.String()] = vals
	}
	return out
}

// writeError maps engine errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var fe *fetch.FetchError
	switch {
	case errors.Is(err, grouping.ErrDurationUnitRequired),
		errors.Is(err, grouping.ErrMissingFacets),
		errors.Is(err, rates.ErrSingleValue):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrNoResults),
		errors.Is(err, session.ErrUnknownEntry),
		errors.Is(err, errSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrSuperseded):
		status = http.StatusConflict
	case errors.As(err, &fe):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
