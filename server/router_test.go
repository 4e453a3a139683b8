package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/curvefit/curve"
	"github.com/arloliu/curvefit/metrics"
	"github.com/arloliu/curvefit/point"
)

type testAPI struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestAPI(t *testing.T, opts ...ManagerOption) *testAPI {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	opts = append([]ManagerOption{
		WithLogger(logger),
		WithModelOptions(curve.WithBounds(point.Bounds{MinX: -10, MaxX: 10, MinY: -10, MaxY: 10})),
	}, opts...)
	mgr := newTestManager(t, opts...)

	srv := httptest.NewServer(NewRouter(mgr, RouterConfig{AllowedOrigins: []string{"*"}, DefaultSamples: 5}, logger))
	t.Cleanup(srv.Close)

	return &testAPI{t: t, srv: srv}
}

func (a *testAPI) do(method, path string, body any) (int, []byte) {
	a.t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(a.t, err)
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, a.srv.URL+"/api/v1"+path, r)
	require.NoError(a.t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)

	return resp.StatusCode, data
}

func (a *testAPI) doJSON(method, path string, body any, wantStatus int, out any) {
	a.t.Helper()

	status, data := a.do(method, path, body)
	require.Equal(a.t, wantStatus, status, string(data))
	if out != nil {
		require.NoError(a.t, json.Unmarshal(data, out))
	}
}

func (a *testAPI) createSession() sessionResponse {
	a.t.Helper()

	var s sessionResponse
	a.doJSON(http.MethodPost, "/sessions", nil, http.StatusCreated, &s)

	return s
}

func (a *testAPI) addPoint(id uuid.UUID, x, y float64) pointCreatedResponse {
	a.t.Helper()

	var resp pointCreatedResponse
	a.doJSON(http.MethodPost, "/sessions/"+id.String()+"/points",
		map[string]float64{"x": x, "y": y, "delta": 1}, http.StatusCreated, &resp)

	return resp
}

func TestAPI_SessionLifecycle(t *testing.T) {
	api := newTestAPI(t)

	s := api.createSession()
	require.Equal(t, 1, s.Order)
	require.Equal(t, "best", s.Mode)
	require.Equal(t, []float64{0, 0}, s.Coefficients)
	require.True(t, s.Degenerate)
	require.False(t, s.CurvePresent)
	require.Empty(t, s.Points)

	var got sessionResponse
	api.doJSON(http.MethodGet, "/sessions/"+s.ID.String(), nil, http.StatusOK, &got)
	require.Equal(t, s.ID, got.ID)

	var list []sessionInfoResponse
	api.doJSON(http.MethodGet, "/sessions", nil, http.StatusOK, &list)
	require.Len(t, list, 1)
	require.Equal(t, s.ID, list[0].ID)

	status, _ := api.do(http.MethodDelete, "/sessions/"+s.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = api.do(http.MethodGet, "/sessions/"+s.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestAPI_CreateWithSettings(t *testing.T) {
	api := newTestAPI(t)

	var s sessionResponse
	api.doJSON(http.MethodPost, "/sessions", map[string]any{"order": 3, "mode": "adjustable"}, http.StatusCreated, &s)
	require.Equal(t, 3, s.Order)
	require.Equal(t, "adjustable", s.Mode)
	require.True(t, s.CurvePresent)

	status, _ := api.do(http.MethodPost, "/sessions", map[string]any{"order": 4})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodPost, "/sessions", map[string]any{"mode": "magic"})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_FitLine(t *testing.T) {
	api := newTestAPI(t)
	s := api.createSession()

	api.addPoint(s.ID, 0, 1)
	api.addPoint(s.ID, 1, 3)
	last := api.addPoint(s.ID, 2, 5)

	require.True(t, last.Point.Relevant)
	require.Equal(t, 1.0, last.Point.Delta)
	require.Len(t, last.Session.Points, 3)
	require.InDeltaSlice(t, []float64{1, 2}, last.Session.Coefficients, 1e-9)
	require.InDelta(t, 0, last.Session.ChiSquared, 1e-9)
	require.NotNil(t, last.Session.RSquared)
	require.Equal(t, 1.0, *last.Session.RSquared)
	require.Equal(t, "y = 1.00 + 2.00x", last.Session.Formula)

	var c curveResponse
	api.doJSON(http.MethodGet, "/sessions/"+s.ID.String()+"/curve?from=0&to=4", nil, http.StatusOK, &c)
	require.True(t, c.Present)
	require.Len(t, c.Samples, 5)
	require.InDelta(t, 9, c.Samples[4].Y, 1e-9)

	// Defaults span the bounds.
	api.doJSON(http.MethodGet, "/sessions/"+s.ID.String()+"/curve", nil, http.StatusOK, &c)
	require.Equal(t, -10.0, c.From)
	require.Equal(t, 10.0, c.To)
	require.Len(t, c.Samples, 5)

	status, _ := api.do(http.MethodGet, "/sessions/"+s.ID.String()+"/curve?samples=1", nil)
	require.Equal(t, http.StatusBadRequest, status)
	status, _ = api.do(http.MethodGet, "/sessions/"+s.ID.String()+"/curve?from=abc", nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_DefaultDelta(t *testing.T) {
	api := newTestAPI(t)
	s := api.createSession()

	var resp pointCreatedResponse
	api.doJSON(http.MethodPost, "/sessions/"+s.ID.String()+"/points",
		map[string]float64{"x": 1, "y": 1}, http.StatusCreated, &resp)
	require.Equal(t, point.DefaultDeltaLimits.Default, resp.Point.Delta)
}

func TestAPI_UpdateAndDeletePoint(t *testing.T) {
	api := newTestAPI(t)
	s := api.createSession()
	base := "/sessions/" + s.ID.String() + "/points/"

	a := api.addPoint(s.ID, 0, 0)
	api.addPoint(s.ID, 1, 1)

	var got sessionResponse
	api.doJSON(http.MethodPatch, base+a.Point.ID.String(), map[string]float64{"y": 2}, http.StatusOK, &got)
	require.Equal(t, 0.0, got.Points[0].X)
	require.Equal(t, 2.0, got.Points[0].Y)
	require.InDeltaSlice(t, []float64{2, -1}, got.Coefficients, 1e-9)

	api.doJSON(http.MethodPatch, base+a.Point.ID.String(), map[string]any{"relevant": false, "delta": 50}, http.StatusOK, &got)
	require.False(t, got.Points[0].Relevant)
	require.True(t, got.Points[0].Returning)
	require.Equal(t, point.DefaultDeltaLimits.Max, got.Points[0].Delta)
	require.True(t, got.Degenerate)
	require.False(t, got.CurvePresent)

	// Moving a point off the graph makes it irrelevant too.
	api.doJSON(http.MethodPatch, base+a.Point.ID.String(), map[string]any{"relevant": true, "x": 50}, http.StatusOK, &got)
	require.False(t, got.Points[0].Relevant)
	require.False(t, got.Points[0].Returning)

	api.doJSON(http.MethodDelete, base+a.Point.ID.String(), nil, http.StatusOK, &got)
	require.Len(t, got.Points, 1)

	status, _ := api.do(http.MethodDelete, base+a.Point.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, status)
	status, _ = api.do(http.MethodPatch, base+uuid.NewString(), map[string]float64{"x": 1})
	require.Equal(t, http.StatusNotFound, status)
	status, _ = api.do(http.MethodPatch, base+"not-a-uuid", map[string]float64{"x": 1})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_OrderModeCoefficients(t *testing.T) {
	api := newTestAPI(t)
	s := api.createSession()
	base := "/sessions/" + s.ID.String()

	var got sessionResponse
	api.doJSON(http.MethodPut, base+"/order", map[string]int{"order": 3}, http.StatusOK, &got)
	require.Equal(t, 3, got.Order)
	require.Len(t, got.Coefficients, 4)

	api.doJSON(http.MethodPut, base+"/coefficients", map[string][]float64{"coefficients": {1, 2, 3}}, http.StatusOK, &got)
	require.Equal(t, []float64{1, 2, 3, 0}, got.ManualCoefficients)
	require.Equal(t, "best", got.Mode)

	api.doJSON(http.MethodPut, base+"/mode", map[string]string{"mode": "adjustable"}, http.StatusOK, &got)
	require.Equal(t, []float64{1, 2, 3, 0}, got.Coefficients)

	api.doJSON(http.MethodPut, base+"/order", map[string]int{"order": 1}, http.StatusOK, &got)
	require.Equal(t, []float64{1, 2}, got.Coefficients)

	status, _ := api.do(http.MethodPut, base+"/order", map[string]int{"order": 0})
	require.Equal(t, http.StatusBadRequest, status)
	status, _ = api.do(http.MethodPut, base+"/mode", map[string]string{"mode": "nope"})
	require.Equal(t, http.StatusBadRequest, status)
	status, _ = api.do(http.MethodPut, base+"/coefficients", map[string][]float64{"coefficients": {1, 2, 3, 4, 5}})
	require.Equal(t, http.StatusBadRequest, status)
	status, _ = api.do(http.MethodPut, base+"/order", []byte("{"))
	require.Equal(t, http.StatusBadRequest, status)

	api.doJSON(http.MethodPost, base+"/reset", nil, http.StatusOK, &got)
	require.Equal(t, 1, got.Order)
	require.Equal(t, "best", got.Mode)
	require.Equal(t, []float64{0, 0, 0, 0}, got.ManualCoefficients)
}

func TestAPI_Compare(t *testing.T) {
	api := newTestAPI(t)
	s := api.createSession()
	base := "/sessions/" + s.ID.String()

	status, _ := api.do(http.MethodGet, base+"/compare", nil)
	require.Equal(t, http.StatusUnprocessableEntity, status)

	for x := -3.0; x <= 3; x++ {
		api.addPoint(s.ID, x, x*x/2)
	}

	var cmp compareResponse
	api.doJSON(http.MethodGet, base+"/compare", nil, http.StatusOK, &cmp)
	require.Len(t, cmp.Models, 3)
	require.Equal(t, cmp.Models[0].Order, cmp.BestOrder)
	require.NotEqual(t, 1, cmp.BestOrder)
	require.Equal(t, 1, cmp.Models[2].Order)
}

func TestAPI_SnapshotImport(t *testing.T) {
	api := newTestAPI(t)
	s := api.createSession()
	api.addPoint(s.ID, 0, 1)
	api.addPoint(s.ID, 1, 2)

	resp, err := http.Get(api.srv.URL + "/api/v1/sessions/" + s.ID.String() + "/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var imported sessionResponse
	api.doJSON(http.MethodPost, "/sessions/import", data, http.StatusCreated, &imported)
	require.NotEqual(t, s.ID, imported.ID)
	require.Len(t, imported.Points, 2)
	require.InDeltaSlice(t, []float64{1, 1}, imported.Coefficients, 1e-9)

	status, body := api.do(http.MethodPost, "/sessions/import", []byte("garbage-garbage-garbage"))
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, string(body), "magic")
}

func TestAPI_InvalidSessionID(t *testing.T) {
	api := newTestAPI(t)

	status, _ := api.do(http.MethodGet, "/sessions/nope", nil)
	require.Equal(t, http.StatusBadRequest, status)
	status, _ = api.do(http.MethodPost, "/sessions/"+uuid.NewString()+"/points", map[string]float64{"x": 1})
	require.Equal(t, http.StatusNotFound, status)
}

func TestAPI_CORS(t *testing.T) {
	api := newTestAPI(t)

	req, err := http.NewRequest(http.MethodOptions, api.srv.URL+"/api/v1/sessions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.NewCollector(reg)
	require.NoError(t, err)
	c.SessionOpened()

	srv := httptest.NewServer(NewMetricsRouter(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.True(t, strings.Contains(string(body), "curvefit_sessions_active 1"))
}
