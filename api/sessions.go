package api

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ratetool/export"
	"ratetool/grouping"
	"ratetool/metrics"
	"ratetool/rates"
	"ratetool/session"
)

var errSessionNotFound = errors.New("session not found")

type sessionStore struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*session.Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{byID: make(map[uuid.UUID]*session.Session)}
}

func (st *sessionStore) add(s *session.Session) uuid.UUID {
	id := uuid.New()
	st.mu.Lock()
	st.byID[id] = s
	st.mu.Unlock()
	return id
}

func (st *sessionStore) get(raw string) (*session.Session, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errSessionNotFound
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.byID[id]
	if !ok {
		return nil, errSessionNotFound
	}
	return s, nil
}

func (st *sessionStore) remove(raw string) bool {
	id, err := uuid.Parse(raw)
	if err != nil {
		return false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.byID[id]; !ok {
		return false
	}
	delete(st.byID, id)
	return true
}

// lookup resolves the :id path parameter, writing the error response when
// the session does not exist.
func (s *Server) lookup(c *gin.Context) (*session.Session, bool) {
	sess, err := s.sessions.get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return sess, true
}

// CreateSession serves POST /api/sessions.
func (s *Server) CreateSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.New(s.combos, s.src, s.pageSize, s.opts...)
		id := s.sessions.add(sess)
		if s.metrics != nil {
			s.metrics.ActiveSessions.Inc()
		}
		c.JSON(http.StatusCreated, gin.H{
			"id":      id.String(),
			"options": optionsJSON(sess.AllOptions()),
		})
	}
}

// DeleteSession serves DELETE /api/sessions/:id.
func (s *Server) DeleteSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.sessions.remove(c.Param("id")) {
			writeError(c, errSessionNotFound)
			return
		}
		if s.metrics != nil {
			s.metrics.ActiveSessions.Dec()
		}
		c.Status(http.StatusNoContent)
	}
}

// SessionOptions serves GET /api/sessions/:id/options.
func (s *Server) SessionOptions() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.lookup(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"selections": sess.Selections().Criteria(),
			"options":    optionsJSON(sess.AllOptions()),
		})
	}
}

type selectionRequest struct {
	Values []string `json:"values"`
}

// SetSelection serves PUT /api/sessions/:id/selections/:facet. An empty
// value list clears the facet. Later facets are always cleared.
func (s *Server) SetSelection() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.lookup(c)
		if !ok {
			return
		}
		f, ok := rates.ParseFacet(c.Param("facet"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown facet"})
			return
		}
		var req selectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := sess.SetSelection(f, req.Values...); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"selections": sess.Selections().Criteria(),
			"options":    optionsJSON(sess.AllOptions()),
		})
	}
}

type tableResponse struct {
	grouping.Page
	Keys    []string          `json:"keys"`
	Columns []grouping.Column `json:"columns"`
}

func newTableResponse(p grouping.Page, cols []grouping.Column) tableResponse {
	keys := make([]string, len(p.Entries))
	for i := range p.Entries {
		keys[i] = p.Entries[i].Key()
	}
	return tableResponse{Page: p, Keys: keys, Columns: cols}
}

// Search serves POST /api/sessions/:id/search and answers with the first
// table page.
func (s *Server) Search() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.lookup(c)
		if !ok {
			return
		}
		res, err := sess.Search(c.Request.Context())
		if err != nil {
			s.metrics.ObserveSearch(searchOutcome(err))
			writeError(c, err)
			return
		}
		s.metrics.ObserveSearch(metrics.OutcomeOK)
		size, ok := intQuery(c, "pageSize", 25)
		if !ok {
			size = 25
		}
		c.JSON(http.StatusOK, gin.H{
			"records": len(res.Records),
			"table":   newTableResponse(grouping.Paginate(res.Entries, 1, size), res.Columns),
		})
	}
}

func searchOutcome(err error) string {
	switch {
	case errors.Is(err, grouping.ErrMissingFacets), errors.Is(err, grouping.ErrDurationUnitRequired):
		return metrics.OutcomeInvalid
	case errors.Is(err, session.ErrSuperseded):
		return metrics.OutcomeSuperseded
	}
	return metrics.OutcomeError
}

// Table serves GET /api/sessions/:id/table?page=&pageSize=.
func (s *Server) Table() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.lookup(c)
		if !ok {
			return
		}
		page, ok := intQuery(c, "page", 1)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
			return
		}
		size, ok := intQuery(c, "pageSize", 25)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pageSize"})
			return
		}
		res, err := sess.Result()
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newTableResponse(grouping.Paginate(res.Entries, page, size), res.Columns))
	}
}

type chartRequest struct {
	Keys []string `json:"keys" binding:"required"`
}

// Chart serves POST /api/sessions/:id/chart with the configuration keys of
// the entries to plot.
func (s *Server) Chart() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.lookup(c)
		if !ok {
			return
		}
		var req chartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		chart, err := sess.Chart(req.Keys...)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, chart)
	}
}

// Export serves GET /api/sessions/:id/export: every record of the latest
// search as a Parquet file. Nothing is sent until every page has been
// written.
func (s *Server) Export() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.lookup(c)
		if !ok {
			return
		}
		var buf bytes.Buffer
		w := export.NewParquetWriter(&buf)
		err := sess.Export(c.Request.Context(), func(records []rates.RateRecord) error {
			_, err := w.Write(records)
			return err
		})
		if closeErr := w.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			writeError(c, err)
			return
		}
		log.Printf("export %s: %d rows, %d bytes", c.Param("id"), w.Count(), buf.Len())
		c.Header("Content-Disposition", `attachment; filename="rates.parquet"`)
		c.Data(http.StatusOK, "application/vnd.apache.parquet", buf.Bytes())
	}
}
