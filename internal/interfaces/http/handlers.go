package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/APISource-Intelligence/internal/discovery"
	"github.com/turtacn/APISource-Intelligence/internal/domain/sourcing"
	"github.com/turtacn/APISource-Intelligence/internal/infrastructure/monitoring/logging"
	appprom "github.com/turtacn/APISource-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/APISource-Intelligence/internal/session"
	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

type discoveryRequest struct {
	APIName string `json:"api_name" binding:"required"`
	Country string `json:"country"`
}

type sessionStartedResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (s *Server) respondError(c *gin.Context, err error) {
	code := apperrors.GetCode(err)
	resp := errorResponse{Code: string(code), Message: apperrors.DefaultMessage(code)}
	var ae *apperrors.AppError
	if aeOK(err, &ae) {
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	}
	if s.metrics != nil {
		appprom.RecordError(s.metrics, "http", string(code))
	}
	c.JSON(apperrors.HTTPStatus(code), resp)
}

func aeOK(err error, target **apperrors.AppError) bool {
	if e, ok := err.(*apperrors.AppError); ok {
		*target = e
		return true
	}
	return false
}

// startSession creates the session record and tracker and runs fn in its own
// goroutine, recording the outcome on completion.
func (s *Server) startSession(
	c *gin.Context,
	kind, apiName, country string,
	fn func(ctx context.Context, tracker *discovery.ProgressTracker) (interface{}, bool, error),
) {
	sess, err := s.sessions.Create(c.Request.Context(), &session.Session{
		APIName: apiName,
		Country: country,
		Kind:    kind,
		Status:  session.StatusRunning,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	tracker := discovery.NewProgressTracker(s.progressBuffer)
	s.trackers.Store(sess.ID, tracker)
	if s.metrics != nil {
		s.metrics.ActiveSessions.WithLabelValues(kind).Inc()
	}

	go func() {
		// The request context dies with the HTTP response; the run gets its
		// own lifetime and is stopped through the tracker.
		ctx := context.Background()
		result, stopped, err := fn(ctx, tracker)
		tracker.Finish()
		if s.metrics != nil {
			s.metrics.ActiveSessions.WithLabelValues(kind).Dec()
		}

		switch {
		case err != nil:
			sess.Status = session.StatusFailed
			sess.Error = err.Error()
			s.logger.Error("session failed",
				logging.String("session", sess.ID), logging.Err(err))
		case stopped:
			sess.Status = session.StatusStopped
			sess.Result = result
		default:
			sess.Status = session.StatusDone
			sess.Result = result
		}
		if err := s.sessions.Update(ctx, sess); err != nil {
			s.logger.Error("session update failed",
				logging.String("session", sess.ID), logging.Err(err))
		}
	}()

	c.JSON(http.StatusAccepted, sessionStartedResponse{
		SessionID: sess.ID,
		Status:    string(session.StatusRunning),
	})
}

func (s *Server) handleStartManufacturerDiscovery(c *gin.Context) {
	var req discoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.InvalidParam("api_name is required"))
		return
	}
	s.startSession(c, "manufacturers", req.APIName, req.Country,
		func(ctx context.Context, tracker *discovery.ProgressTracker) (interface{}, bool, error) {
			result, err := s.manufacturers.Discover(ctx, req.APIName, req.Country, tracker)
			if err != nil {
				return nil, false, err
			}
			return result, result.Stopped, nil
		})
}

func (s *Server) handleStartBuyerDiscovery(c *gin.Context) {
	var req discoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.InvalidParam("api_name is required"))
		return
	}
	s.startSession(c, "buyers", req.APIName, req.Country,
		func(ctx context.Context, tracker *discovery.ProgressTracker) (interface{}, bool, error) {
			result, err := s.buyers.Find(ctx, req.APIName, req.Country, tracker)
			if err != nil {
				return nil, false, err
			}
			return result, result.Stopped, nil
		})
}

func (s *Server) handleStartSynthesisAnalysis(c *gin.Context) {
	var req discoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.InvalidParam("api_name is required"))
		return
	}
	if s.analyzer == nil {
		s.respondError(c, apperrors.Unavailable("synthesis analysis is not configured"))
		return
	}
	s.startSession(c, "synthesis", req.APIName, req.Country,
		func(ctx context.Context, tracker *discovery.ProgressTracker) (interface{}, bool, error) {
			report, err := s.analyzer.Analyze(ctx, req.APIName, tracker)
			if err != nil {
				return nil, false, err
			}
			return report, report.Stopped, nil
		})
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess, err := s.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type progressResponse struct {
	SessionID string                    `json:"session_id"`
	Status    session.Status            `json:"status"`
	Events    []discovery.ProgressEvent `json:"events"`
}

func (s *Server) handleSessionProgress(c *gin.Context) {
	id := c.Param("id")
	sess, err := s.sessions.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	resp := progressResponse{SessionID: id, Status: sess.Status}
	if t, ok := s.trackers.Load(id); ok {
		resp.Events = t.(*discovery.ProgressTracker).Drain()
	}
	if resp.Events == nil {
		resp.Events = []discovery.ProgressEvent{}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleStopSession(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.sessions.Get(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	if t, ok := s.trackers.Load(id); ok {
		t.(*discovery.ProgressTracker).Stop()
	}
	c.JSON(http.StatusAccepted, gin.H{"session_id": id, "stopping": true})
}

func (s *Server) handleQueryManufacturers(c *gin.Context) {
	api := c.Query("api")
	country := c.Query("country")

	var records []sourcing.ManufacturerRecord
	if s.manufacturerRecords != nil {
		var err error
		records, err = s.manufacturerRecords.Query(c.Request.Context(), api, country)
		if err != nil {
			// Storage unavailability reads as no data, by contract.
			s.logger.Warn("manufacturer query failed", logging.Err(err))
			records = nil
		}
	}
	if records == nil {
		records = []sourcing.ManufacturerRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

func (s *Server) handleQueryBuyers(c *gin.Context) {
	api := c.Query("api")
	country := c.Query("country")

	var records []sourcing.BuyerRecord
	if s.buyerRecords != nil {
		var err error
		records, err = s.buyerRecords.Query(c.Request.Context(), api, country)
		if err != nil {
			s.logger.Warn("buyer query failed", logging.Err(err))
			records = nil
		}
	}
	if records == nil {
		records = []sourcing.BuyerRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

func (s *Server) handlePurgeBySource(c *gin.Context) {
	name := c.Param("name")
	if s.manufacturerRecords == nil {
		s.respondError(c, apperrors.Unavailable("record storage is not configured"))
		return
	}
	deleted, err := s.manufacturerRecords.DeleteBySource(c.Request.Context(), name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": name, "deleted": deleted})
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.healthFn != nil {
		if err := s.healthFn(c.Request.Context()); err != nil {
			s.setHealthGauge(0)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		s.setHealthGauge(1)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) setHealthGauge(v float64) {
	if s.metrics != nil {
		s.metrics.HealthCheckStatus.WithLabelValues("database").Set(v)
	}
}

//Personal.AI order the ending
