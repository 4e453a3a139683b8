package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arloliu/curvefit/curve"
	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/format"
	"github.com/arloliu/curvefit/point"
	"github.com/arloliu/curvefit/regression"
)

// maxSnapshotBody caps imported snapshot size.
const maxSnapshotBody = 16 << 20

type SessionsHandler struct {
	mgr            *Manager
	defaultSamples int
}

func NewSessionsHandler(mgr *Manager, defaultSamples int) *SessionsHandler {
	if defaultSamples < 2 {
		defaultSamples = 2
	}

	return &SessionsHandler{mgr: mgr, defaultSamples: defaultSamples}
}

type createSessionRequest struct {
	Order *int   `json:"order,omitempty"`
	Mode  string `json:"mode,omitempty"`
}

type addPointRequest struct {
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Delta *float64 `json:"delta,omitempty"`
}

type updatePointRequest struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Delta    *float64 `json:"delta,omitempty"`
	Relevant *bool    `json:"relevant,omitempty"`
}

type orderRequest struct {
	Order int `json:"order"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type coefficientsRequest struct {
	Coefficients []float64 `json:"coefficients"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	return true
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}

	return id, true
}

func pointID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "pointID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid point id")
		return uuid.Nil, false
	}

	return id, true
}

func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if !decodeBody(w, r, &req) {
			return
		}
	}

	var opts []curve.Option
	if req.Order != nil {
		opts = append(opts, curve.WithOrder(*req.Order))
	}
	if req.Mode != "" {
		mode, ok := format.ParseFitMode(req.Mode)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown mode %q", req.Mode))
			return
		}
		opts = append(opts, curve.WithFitMode(mode))
	}

	id, err := h.mgr.Create(r.Context(), opts...)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.respondSession(w, r, id, http.StatusCreated)
}

func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.mgr.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]sessionInfoResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, sessionInfoResponse{
			ID:        info.ID,
			UpdatedAt: info.UpdatedAt.UTC().Format(time.RFC3339Nano),
			Size:      info.Size,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.respondSession(w, r, id, http.StatusOK)
}

func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.mgr.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionsHandler) AddPoint(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req addPointRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var resp pointCreatedResponse
	err := h.mgr.Update(r.Context(), id, func(m *curve.Model) error {
		delta := m.DeltaLimits().Default
		if req.Delta != nil {
			delta = *req.Delta
		}
		pid, err := m.AddPoint(point.Position{X: req.X, Y: req.Y}, delta)
		if err != nil {
			return err
		}
		p, _ := m.Point(pid)
		resp.Point = newPointResponse(p, m.Bounds())
		resp.Session = newSessionResponse(id, m)

		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *SessionsHandler) UpdatePoint(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	pid, ok := pointID(w, r)
	if !ok {
		return
	}
	var req updatePointRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.mutate(w, r, id, func(m *curve.Model) error {
		p, found := m.Point(pid)
		if !found {
			return fmt.Errorf("%w: %s", errs.ErrPointNotFound, pid)
		}
		if req.X != nil || req.Y != nil {
			pos := p.Position
			if req.X != nil {
				pos.X = *req.X
			}
			if req.Y != nil {
				pos.Y = *req.Y
			}
			if err := m.SetPointPosition(pid, pos); err != nil {
				return err
			}
		}
		if req.Delta != nil {
			if err := m.SetPointDelta(pid, *req.Delta); err != nil {
				return err
			}
		}
		if req.Relevant != nil {
			if err := m.SetPointRelevance(pid, *req.Relevant); err != nil {
				return err
			}
		}

		return nil
	})
}

func (h *SessionsHandler) DeletePoint(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	pid, ok := pointID(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, id, func(m *curve.Model) error { return m.RemovePoint(pid) })
}

func (h *SessionsHandler) SetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req orderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.mutate(w, r, id, func(m *curve.Model) error { return m.SetOrder(req.Order) })
}

func (h *SessionsHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req modeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	mode, known := format.ParseFitMode(req.Mode)
	if !known {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown mode %q", req.Mode))
		return
	}
	h.mutate(w, r, id, func(m *curve.Model) error { return m.SetFitMode(mode) })
}

func (h *SessionsHandler) SetCoefficients(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req coefficientsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.mutate(w, r, id, func(m *curve.Model) error { return m.SetManualCoefficients(req.Coefficients) })
}

func (h *SessionsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, id, func(m *curve.Model) error {
		m.Reset()
		return nil
	})
}

func (h *SessionsHandler) Curve(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	from, fromErr := parseFloatParam(q.Get("from"))
	to, toErr := parseFloatParam(q.Get("to"))
	samples, samplesErr := strconv.Atoi(q.Get("samples"))
	if q.Get("samples") == "" {
		samples, samplesErr = h.defaultSamples, nil
	}
	if fromErr != nil || toErr != nil || samplesErr != nil {
		writeError(w, http.StatusBadRequest, "from, to and samples must be numbers")
		return
	}

	var resp curveResponse
	err := h.mgr.Read(r.Context(), id, func(m *curve.Model) error {
		bounds := m.Bounds()
		if from == nil {
			from = &bounds.MinX
		}
		if to == nil {
			to = &bounds.MaxX
		}
		pts, err := m.Sample(*from, *to, samples)
		if err != nil {
			return err
		}

		resp = curveResponse{Present: pts != nil, From: *from, To: *to, Samples: make([]sampleResponse, 0, len(pts))}
		for _, p := range pts {
			resp.Samples = append(resp.Samples, sampleResponse{X: p.X, Y: p.Y})
		}

		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseFloatParam(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func (h *SessionsHandler) Compare(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var result *regression.Result
	err := h.mgr.Read(r.Context(), id, func(m *curve.Model) error {
		var err error
		result, err = regression.Analyze(m.RelevantPoints())

		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := compareResponse{BestOrder: result.BestFit.Order, Models: make([]fitResponse, 0, len(result.AllModels))}
	for _, model := range result.AllModels {
		resp.Models = append(resp.Models, newFitResponse(model))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionsHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	data, err := h.mgr.Snapshot(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.cfs"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *SessionsHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSnapshotBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "snapshot too large")
		return
	}

	id, err := h.mgr.Import(r.Context(), data)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.respondSession(w, r, id, http.StatusCreated)
}

// mutate applies fn and responds with the resulting session state.
func (h *SessionsHandler) mutate(w http.ResponseWriter, r *http.Request, id uuid.UUID, fn func(m *curve.Model) error) {
	var resp sessionResponse
	err := h.mgr.Update(r.Context(), id, func(m *curve.Model) error {
		if err := fn(m); err != nil {
			return err
		}
		resp = newSessionResponse(id, m)

		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionsHandler) respondSession(w http.ResponseWriter, r *http.Request, id uuid.UUID, status int) {
	var resp sessionResponse
	err := h.mgr.Read(r.Context(), id, func(m *curve.Model) error {
		resp = newSessionResponse(id, m)
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, status, resp)
}
