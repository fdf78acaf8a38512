package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hupe1980/navigo"
	"github.com/hupe1980/navigo/graph"
)

// maxProbeTimeout caps timeout_ms on /path-exists.
const maxProbeTimeout = 30 * time.Second

type server struct {
	nav          *navigo.Navigator
	logger       *slog.Logger
	probeTimeout time.Duration
}

func newRouter(nav *navigo.Navigator, logger *slog.Logger, probeTimeout time.Duration) *gin.Engine {
	s := &server{nav: nav, logger: logger, probeTimeout: probeTimeout}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	config.AllowHeaders = []string{"*"}
	r.Use(cors.New(config))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/state", s.handleState)
	r.PUT("/start", s.handleEndpoint(nav.SetStart))
	r.PUT("/target", s.handleEndpoint(nav.SetTarget))
	r.POST("/search", s.handleSearch)
	r.GET("/preview", s.handlePreview)
	r.GET("/route", s.handleRoute)
	r.GET("/best-candidate", s.handleBestCandidate)
	r.GET("/redraw", s.handleRedraw)
	r.GET("/nodes/random", s.handleRandomNode)
	r.GET("/nodes/:id", s.handleNode)
	r.GET("/nearest", s.handleNearest)
	r.GET("/path-exists", s.handlePathExists)

	return r
}

func (s *server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()
		s.logger.DebugContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(began),
		)
	}
}

type stateResponse struct {
	State              string             `json:"state"`
	Seq                uint64             `json:"seq"`
	Start              *graph.NodeID      `json:"start"`
	Target             *graph.NodeID      `json:"target"`
	Found              bool               `json:"found"`
	RouteTime          float32            `json:"route_time"`
	RouteTimeFormatted string             `json:"route_time_formatted"`
	ElapsedMillis      int64              `json:"elapsed_ms"`
	Stats              navigo.SearchStats `json:"stats"`
	Error              string             `json:"error,omitempty"`
}

func (s *server) handleState(c *gin.Context) {
	snap := s.nav.Snapshot()
	resp := stateResponse{
		State:              snap.State.String(),
		Seq:                snap.Seq,
		Found:              snap.Found,
		RouteTime:          snap.RouteTime,
		RouteTimeFormatted: navigo.FormatDuration(snap.RouteTime),
		ElapsedMillis:      snap.Elapsed().Milliseconds(),
		Stats:              snap.Stats,
	}
	if id, ok := s.nav.Start(); ok {
		resp.Start = &id
	}
	if id, ok := s.nav.Target(); ok {
		resp.Target = &id
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

type endpointRequest struct {
	ID  *graph.NodeID `json:"id"`
	Lat *float32      `json:"lat"`
	Lon *float32      `json:"lon"`
}

type nodeResponse struct {
	ID         graph.NodeID     `json:"id"`
	Coordinate graph.Coordinate `json:"coordinate"`
}

func (s *server) handleEndpoint(set func(graph.NodeID) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req endpointRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var id graph.NodeID
		switch {
		case req.ID != nil:
			id = *req.ID
		case req.Lat != nil && req.Lon != nil:
			nearest, ok := s.nav.NearestNode(*req.Lat, *req.Lon)
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "graph is empty"})
				return
			}
			id = nearest
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "id or lat/lon required"})
			return
		}

		if err := set(id); err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		coord, _ := s.nav.CoordinateOf(id)
		c.JSON(http.StatusOK, nodeResponse{ID: id, Coordinate: coord})
	}
}

func (s *server) handleSearch(c *gin.Context) {
	if err := s.nav.TryStartSearch(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"seq": s.nav.Snapshot().Seq})
}

func (s *server) handlePreview(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"coordinates": nonNil(s.nav.PreviewCoordinates())})
}

func (s *server) handleRoute(c *gin.Context) {
	snap := s.nav.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"found":                snap.Found,
		"coordinates":          nonNil(snap.Route),
		"route_time":           snap.RouteTime,
		"route_time_formatted": navigo.FormatDuration(snap.RouteTime),
	})
}

func (s *server) handleBestCandidate(c *gin.Context) {
	coord, ok := s.nav.BestCandidateCoordinate()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"coordinate": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"coordinate": coord})
}

func (s *server) handleRedraw(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"redraw": s.nav.ConsumeRedraw()})
}

func (s *server) handleRandomNode(c *gin.Context) {
	id, err := s.nav.RandomEligibleNode()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	coord, _ := s.nav.CoordinateOf(id)
	c.JSON(http.StatusOK, nodeResponse{ID: id, Coordinate: coord})
}

func (s *server) handleNode(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid node id"})
		return
	}
	coord, ok := s.nav.CoordinateOf(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": graph.ErrNodeNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, nodeResponse{ID: id, Coordinate: coord})
}

func (s *server) handleNearest(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 32)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 32)
	if errLat != nil || errLon != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon required"})
		return
	}
	id, ok := s.nav.NearestNode(float32(lat), float32(lon))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "graph is empty"})
		return
	}
	coord, _ := s.nav.CoordinateOf(id)
	c.JSON(http.StatusOK, nodeResponse{ID: id, Coordinate: coord})
}

func (s *server) handlePathExists(c *gin.Context) {
	from, errFrom := strconv.ParseUint(c.Query("from"), 10, 64)
	to, errTo := strconv.ParseUint(c.Query("to"), 10, 64)
	if errFrom != nil || errTo != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to required"})
		return
	}

	timeout := s.probeTimeout
	if v := c.Query("timeout_ms"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil || ms <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timeout_ms"})
			return
		}
		timeout = min(time.Duration(ms)*time.Millisecond, maxProbeTimeout)
	}

	r, err := s.nav.Probe(c.Request.Context(), from, to, timeout)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exists": r == navigo.Reachable,
		"result": r.String(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, graph.ErrNodeNotFound), errors.Is(err, graph.ErrNoEligibleNode):
		return http.StatusNotFound
	case errors.Is(err, navigo.ErrNotReady), errors.Is(err, navigo.ErrBackpressure):
		return http.StatusServiceUnavailable
	case errors.Is(err, navigo.ErrBusy), errors.Is(err, navigo.ErrEndpointsUnset):
		return http.StatusConflict
	case errors.Is(err, navigo.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func nonNil(cs []graph.Coordinate) []graph.Coordinate {
	if cs == nil {
		return []graph.Coordinate{}
	}
	return cs
}
