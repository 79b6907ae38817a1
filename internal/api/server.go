// Package api serves likelihood fits and hypothesis tests over HTTP.
// Workspaces arrive inline in the request body; completed fits are kept in
// an in-memory store addressable by id.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/fkrieter/pyhf/internal/logger"
	"github.com/fkrieter/pyhf/pkg/infer"
	"github.com/fkrieter/pyhf/pkg/optimize"
	"github.com/fkrieter/pyhf/pkg/pdf"
	"github.com/fkrieter/pyhf/pkg/workspace"
)

type Server struct {
	store *FitStore
	opt   *optimize.Newton
	log   logger.Logger
	clock func() time.Time
}

func NewServer(store *FitStore, opt *optimize.Newton, log logger.Logger) *Server {
	if store == nil {
		store = NewFitStore()
	}
	if opt == nil {
		opt = &optimize.Newton{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		store: store,
		opt:   opt,
		log:   log,
		clock: time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/fits", s.handleCreateFit)
	e.GET("/v1/fits", s.handleListFits)
	e.GET("/v1/fits/:id", s.handleGetFit)
	e.DELETE("/v1/fits/:id", s.handleDeleteFit)
	e.POST("/v1/hypotest", s.handleHypoTest)
}

func (s *Server) handleCreateFit(c *echo.Context) error {
	req, err := decodeJSON[FitRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	m, data, err := s.buildModel(req.Workspace, req.POI, req.Data)
	if err != nil {
		return s.writeFailure(c, err)
	}

	var res *optimize.Result
	if req.POIValue != nil {
		res, err = s.opt.ConstrainedBestFit(m, *req.POIValue, data)
	} else {
		res, err = s.opt.UnconstrainedBestFit(m, data)
	}
	if err != nil {
		return s.writeFailure(c, newUnprocessable(err))
	}

	names := m.Config().ParNames()
	fit := FitResponse{
		ID:         newFitID(),
		Object:     "fit",
		CreatedAt:  s.clock().Unix(),
		POI:        m.Config().POIName(),
		POIValue:   req.POIValue,
		Parameters: make([]FitParameter, len(res.X)),
		TwiceNLL:   res.Objective,
		Iterations: res.Iterations,
		Converged:  res.Converged,
	}
	for i, v := range res.X {
		fit.Parameters[i] = FitParameter{Name: names[i], Value: v}
	}
	s.store.Save(fit)
	s.log.Debug("fit stored", "id", fit.ID, "twice_nll", fit.TwiceNLL, "iterations", fit.Iterations)
	return c.JSON(http.StatusOK, fit)
}

func (s *Server) handleGetFit(c *echo.Context) error {
	fit, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "fit not found")
	}
	return c.JSON(http.StatusOK, fit)
}

func (s *Server) handleDeleteFit(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "fit not found")
	}
	return c.JSON(http.StatusOK, DeleteFitResponse{
		ID:      id,
		Object:  "fit",
		Deleted: true,
	})
}

func (s *Server) handleListFits(c *echo.Context) error {
	return c.JSON(http.StatusOK, FitList{
		Object: "list",
		Data:   s.store.List(),
	})
}

func (s *Server) handleHypoTest(c *echo.Context) error {
	req, err := decodeJSON[HypoTestRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	m, data, err := s.buildModel(req.Workspace, req.POI, req.Data)
	if err != nil {
		return s.writeFailure(c, err)
	}

	testPOI := 1.0
	if req.TestPOI != nil {
		testPOI = *req.TestPOI
	}
	res, err := infer.HypoTest(m, testPOI, data,
		infer.WithOptimizer(s.opt), infer.WithTailProbs(), infer.WithExpectedSet())
	if err != nil {
		return s.writeFailure(c, newUnprocessable(err))
	}
	s.log.Debug("hypotest served", "test_poi", testPOI, "cls", res.CLs)
	return c.JSON(http.StatusOK, HypoTestResponse{
		Object:         "hypotest",
		TestPOI:        testPOI,
		CLs:            res.CLs,
		CLsb:           res.TailProbs[0],
		CLb:            res.TailProbs[1],
		TestStat:       res.TestStat,
		TestStatAsimov: res.TestStatAsimov,
		NSigma:         append([]float64(nil), infer.NSigma...),
		Expected:       res.Expected,
	})
}

// buildModel turns an inline workspace into a model and a full dataset.
// An empty poi falls back to the workspace's first measurement; data may
// be per-bin observations, a full dataset, or empty to use the workspace
// observations.
func (s *Server) buildModel(spec *workspace.Spec, poi string, data []float64) (*pdf.Model, []float64, error) {
	if spec == nil {
		return nil, nil, newInvalidRequest("workspace is required")
	}
	if poi == "" && len(spec.Measurements) > 0 {
		poi = spec.Measurements[0].Config.POI
	}
	var opts []pdf.Option
	if poi != "" {
		opts = append(opts, pdf.WithPOI(poi))
	}
	m, err := pdf.New(spec, opts...)
	if err != nil {
		return nil, nil, newUnprocessable(err)
	}

	actual := m.NActualBins()
	full := actual + len(m.Config().AuxData())
	switch len(data) {
	case 0:
		observed := make([]float64, 0, actual)
		for _, name := range m.Config().Channels() {
			o, ok := spec.Observation(name)
			if !ok {
				return nil, nil, newUnprocessable(fmt.Errorf("no observation for channel %q", name))
			}
			observed = append(observed, o...)
		}
		return m, m.ObservedData(observed), nil
	case actual:
		return m, m.ObservedData(data), nil
	case full:
		return m, data, nil
	default:
		return nil, nil, newInvalidRequest(
			fmt.Sprintf("data has %d entries, want %d observations or %d with auxiliary data", len(data), actual, full))
	}
}

func (s *Server) writeFailure(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return writeBadRequest(c, err.Error())
	case errors.Is(err, ErrUnprocessable):
		return writeUnprocessable(c, err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeUnprocessable(c *echo.Context, msg string) error {
	return writeError(c, http.StatusUnprocessableEntity, "unprocessable_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
		},
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
