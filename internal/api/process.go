package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/banshee-data/sitstand.report/internal/db"
	"github.com/banshee-data/sitstand.report/internal/httputil"
	"github.com/banshee-data/sitstand.report/internal/imu"
	"github.com/banshee-data/sitstand.report/internal/kinematics"
	"github.com/banshee-data/sitstand.report/internal/norms"
	"github.com/banshee-data/sitstand.report/internal/pipeline"
)

// processRequest accepts the Portuguese field names of the mobile client
// and their English equivalents.
type processRequest struct {
	Dados   []imu.Record `json:"dados"`
	Samples []imu.Record `json:"samples"`

	Peso   *float64 `json:"peso"`
	Mass   *float64 `json:"mass"`
	Altura *float64 `json:"altura"`
	Height *float64 `json:"height"`
	Idade  *int     `json:"idade"`
	Age    *int     `json:"age"`
	Sexo   *string  `json:"sexo"`
	Sex    *string  `json:"sex"`
}

func pick[T any](pt, en *T) *T {
	if pt != nil {
		return pt
	}
	return en
}

// toPipeline validates the subject fields. Sample content is left to the
// pipeline, which degrades instead of failing.
func (p processRequest) toPipeline() (pipeline.Request, error) {
	var req pipeline.Request

	req.Samples = p.Dados
	if req.Samples == nil {
		req.Samples = p.Samples
	}

	mass := pick(p.Peso, p.Mass)
	if mass == nil || *mass <= 0 {
		return req, errors.New("peso must be a positive number of kilograms")
	}
	height := pick(p.Altura, p.Height)
	if height == nil || *height <= 0 {
		return req, errors.New("altura must be a positive number of metres")
	}
	age := pick(p.Idade, p.Age)
	if age == nil || *age < 0 {
		return req, errors.New("idade must be a non-negative integer")
	}
	sexField := pick(p.Sexo, p.Sex)
	if sexField == nil {
		return req, errors.New("sexo is required")
	}
	sex, ok := norms.ParseSex(*sexField)
	if !ok {
		return req, fmt.Errorf("sexo must be F or M, got %q", *sexField)
	}

	req.MassKg, req.HeightM, req.Age, req.Sex = *mass, *height, *age, sex
	return req, nil
}

type globalMetrics struct {
	pipeline.Totals
	Classification string `json:"classificacao"`
}

type seriesPoint struct {
	T   float64 `json:"t"`
	Val float64 `json:"val"`
}

type filteredRow struct {
	TimeOffset float64 `json:"time_offset"`
	AccelX     float64 `json:"accel_x"`
	AccelY     float64 `json:"accel_y"`
	AccelZ     float64 `json:"accel_z"`
	GyroX      float64 `json:"gyro_x"`
	GyroY      float64 `json:"gyro_y"`
	GyroZ      float64 `json:"gyro_z"`
}

type processResponse struct {
	Status   string                    `json:"status"`
	ID       string                    `json:"id"`
	Global   globalMetrics             `json:"metricas_globais"`
	Cycles   []kinematics.CycleMetrics `json:"detalhes_ciclos"`
	Series   []seriesPoint             `json:"timeseries_processada"`
	Filtered []filteredRow             `json:"timeseries_filtrada,omitempty"`
}

func newProcessResponse(res *pipeline.ResultSummary, withFiltered bool) processResponse {
	out := processResponse{
		Status: "success",
		ID:     res.ID.String(),
		Global: globalMetrics{Totals: res.Totals.Rounded(), Classification: res.Classification},
		Cycles: make([]kinematics.CycleMetrics, len(res.Cycles)),
		Series: make([]seriesPoint, len(res.Segments.Time)),
	}
	for i, c := range res.Cycles {
		out.Cycles[i] = c.Rounded()
	}
	for i, t := range res.Segments.Time {
		out.Series[i] = seriesPoint{T: t, Val: res.Segments.Pitch[i]}
	}
	if withFiltered {
		f := res.Filtered
		out.Filtered = make([]filteredRow, f.Len())
		for i, t := range f.Time {
			out.Filtered[i] = filteredRow{
				TimeOffset: t,
				AccelX:     f.Accel[i][0], AccelY: f.Accel[i][1], AccelZ: f.Accel[i][2],
				GyroX: f.Gyro[i][0], GyroY: f.Gyro[i][1], GyroZ: f.Gyro[i][2],
			}
		}
	}
	return out
}

// analyze decodes, validates and runs one request. It writes the error
// response itself and returns nil in that case.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) (*pipeline.ResultSummary, pipeline.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return nil, pipeline.Request{}
	}

	var body processRequest
	if err := httputil.DecodeJSON(w, r, &body, maxBodyBytes); err != nil {
		httputil.BadRequest(w, err.Error())
		return nil, pipeline.Request{}
	}
	req, err := body.toPipeline()
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return nil, pipeline.Request{}
	}

	res, err := s.safeRun(r.Context(), req)
	if err != nil {
		log.Printf("analysis failed: %v", err)
		httputil.InternalServerError(w, err.Error())
		return nil, pipeline.Request{}
	}
	return res, req
}

// safeRun turns a panic in the numeric code into an error.
func (s *Server) safeRun(ctx context.Context, req pipeline.Request) (res *pipeline.ResultSummary, err error) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("panic during analysis: %v\n%s", p, debug.Stack())
			res, err = nil, fmt.Errorf("%v", p)
		}
	}()
	return s.run(ctx, req, s.cfg)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	res, req := s.analyze(w, r)
	if res == nil {
		return
	}
	if s.store != nil {
		if err := s.store.RecordRun(r.Context(), db.RunFromResult("api", req, res)); err != nil {
			log.Printf("failed to record run %s: %v", res.ID, err)
		}
	}
	httputil.WriteJSONOK(w, newProcessResponse(res, r.URL.Query().Get("filtered") == "true"))
}
