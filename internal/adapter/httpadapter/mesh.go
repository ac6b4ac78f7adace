package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/couchcryptid/jismesh-etl/internal/meshcode"
)

const (
	maxBodyBytes     = 8 << 20
	maxBatchElements = 100_000
	maxGeoJSONCells  = 1_000
)

type encodeResponse struct {
	Code string `json:"code"`
}

type encodeBatchRequest struct {
	Lats  []float64 `json:"lats"`
	Lons  []float64 `json:"lons"`
	Level int       `json:"level"`
}

type encodeBatchResponse struct {
	Codes []string `json:"codes"`
}

type decodeResponse struct {
	Code   string          `json:"code"`
	Level  int             `json:"level"`
	Mode   meshcode.Mode   `json:"mode"`
	Result meshcode.Result `json:"result"`
}

type decodeBatchRequest struct {
	Codes []string `json:"codes"`
	Mode  string   `json:"mode"`
}

type decodeBatchResponse struct {
	Mode    meshcode.Mode     `json:"mode"`
	Results []meshcode.Result `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := queryFloat(q.Get("lat"), "lat")
	if err != nil {
		s.fail(w, "encode", err)
		return
	}
	lon, err := queryFloat(q.Get("lon"), "lon")
	if err != nil {
		s.fail(w, "encode", err)
		return
	}
	level, err := queryLevel(q.Get("level"))
	if err != nil {
		s.fail(w, "encode", err)
		return
	}

	code, err := meshcode.Encode(lat, lon, level)
	if err != nil {
		s.fail(w, "encode", err)
		return
	}
	s.ok(w, "encode", 1, encodeResponse{Code: code})
}

func (s *Server) handleEncodeBatch(w http.ResponseWriter, r *http.Request) {
	var req encodeBatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, "encode", err)
		return
	}
	if len(req.Lats) > maxBatchElements {
		s.fail(w, "encode", fmt.Errorf("%w: batch of %d exceeds %d", meshcode.ErrInvalidArgument, len(req.Lats), maxBatchElements))
		return
	}

	codes, err := meshcode.EncodeBatch(r.Context(), req.Lats, req.Lons, meshcode.Level(req.Level))
	if err != nil {
		s.fail(w, "encode", err)
		return
	}
	s.ok(w, "encode", len(codes), encodeBatchResponse{Codes: codes})
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := queryMode(q.Get("mode"))
	if err != nil {
		s.fail(w, "decode", err)
		return
	}

	cell, err := meshcode.DecodeCell(q.Get("code"))
	if err != nil {
		s.fail(w, "decode", err)
		return
	}
	res, err := cell.Result(mode)
	if err != nil {
		s.fail(w, "decode", err)
		return
	}
	s.ok(w, "decode", 1, decodeResponse{Code: cell.Code, Level: int(cell.Level), Mode: mode, Result: res})
}

func (s *Server) handleDecodeBatch(w http.ResponseWriter, r *http.Request) {
	var req decodeBatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, "decode", err)
		return
	}
	if len(req.Codes) > maxBatchElements {
		s.fail(w, "decode", fmt.Errorf("%w: batch of %d exceeds %d", meshcode.ErrInvalidArgument, len(req.Codes), maxBatchElements))
		return
	}
	mode, err := queryMode(req.Mode)
	if err != nil {
		s.fail(w, "decode", err)
		return
	}

	results, err := meshcode.DecodeBatch(r.Context(), req.Codes, mode)
	if err != nil {
		s.fail(w, "decode", err)
		return
	}
	s.ok(w, "decode", len(results), decodeBatchResponse{Mode: mode, Results: results})
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	codes := r.URL.Query()["code"]
	if len(codes) == 0 {
		s.fail(w, "geojson", fmt.Errorf("%w: at least one code is required", meshcode.ErrInvalidArgument))
		return
	}
	if len(codes) > maxGeoJSONCells {
		s.fail(w, "geojson", fmt.Errorf("%w: %d codes exceeds %d", meshcode.ErrInvalidArgument, len(codes), maxGeoJSONCells))
		return
	}

	cells, err := meshcode.DecodeCells(r.Context(), codes)
	if err != nil {
		s.fail(w, "geojson", err)
		return
	}
	fc := meshcode.FeatureCollection(cells, nil)
	data, err := fc.MarshalJSON()
	if err != nil {
		s.fail(w, "geojson", err)
		return
	}

	s.metrics.CodecRequests.WithLabelValues("geojson", "success").Inc()
	s.metrics.CodecElements.Observe(float64(len(cells)))
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ok records a successful request and writes the JSON body.
func (s *Server) ok(w http.ResponseWriter, op string, elements int, v any) {
	s.metrics.CodecRequests.WithLabelValues(op, "success").Inc()
	s.metrics.CodecElements.Observe(float64(elements))
	writeJSON(w, http.StatusOK, v)
}

// fail maps codec errors to a status: invalid arguments are the caller's
// fault, anything else is ours.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, context.Canceled) {
		// The client is gone; nothing to write.
		s.metrics.CodecRequests.WithLabelValues(op, "canceled").Inc()
		s.logger.Debug("codec request canceled", "op", op)
		return
	}
	if errors.Is(err, meshcode.ErrInvalidArgument) {
		s.metrics.CodecRequests.WithLabelValues(op, "invalid").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.metrics.CodecRequests.WithLabelValues(op, "error").Inc()
	s.logger.Error("codec request failed", "op", op, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

// decodeBody reads a JSON request body. Syntax and size problems are reported
// as invalid arguments.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %v", meshcode.ErrInvalidArgument, err)
	}
	return nil
}

func queryFloat(s, name string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: %s is required", meshcode.ErrInvalidArgument, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", meshcode.ErrInvalidArgument, name, s)
	}
	return v, nil
}

func queryLevel(s string) (meshcode.Level, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: level is required", meshcode.ErrInvalidArgument)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: level %q is not an integer", meshcode.ErrInvalidArgument, s)
	}
	return meshcode.Level(n), nil
}

// queryMode parses a mode, defaulting to the south-west corner.
func queryMode(s string) (meshcode.Mode, error) {
	if s == "" {
		return meshcode.ModeSW, nil
	}
	return meshcode.ParseMode(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // response already committed
}
