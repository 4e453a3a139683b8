package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/google/uuid"

	"github.com/arloliu/curvefit/curve"
	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/point"
	"github.com/arloliu/curvefit/regression"
)

type boundsResponse struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

type pointResponse struct {
	ID        uuid.UUID `json:"id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Delta     float64   `json:"delta"`
	Returning bool      `json:"returning"`
	Relevant  bool      `json:"relevant"`
}

type sessionResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Order              int             `json:"order"`
	Mode               string          `json:"mode"`
	ManualCoefficients []float64       `json:"manual_coefficients"`
	Coefficients       []float64       `json:"coefficients"`
	Formula            string          `json:"formula"`
	ChiSquared         float64         `json:"chi_squared"`
	RSquared           *float64        `json:"r_squared"`
	Rank               int             `json:"rank"`
	Degenerate         bool            `json:"degenerate"`
	CurvePresent       bool            `json:"curve_present"`
	Bounds             boundsResponse  `json:"bounds"`
	Points             []pointResponse `json:"points"`
}

type pointCreatedResponse struct {
	Point   pointResponse   `json:"point"`
	Session sessionResponse `json:"session"`
}

type sampleResponse struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type curveResponse struct {
	Present bool             `json:"present"`
	From    float64          `json:"from"`
	To      float64          `json:"to"`
	Samples []sampleResponse `json:"samples"`
}

type fitResponse struct {
	Order        int       `json:"order"`
	Coefficients []float64 `json:"coefficients"`
	Formula      string    `json:"formula"`
	ChiSquared   float64   `json:"chi_squared"`
	RSquared     *float64  `json:"r_squared"`
	Degenerate   bool      `json:"degenerate"`
}

type compareResponse struct {
	BestOrder int           `json:"best_order"`
	Models    []fitResponse `json:"models"`
}

type sessionInfoResponse struct {
	ID        uuid.UUID `json:"id"`
	UpdatedAt string    `json:"updated_at"`
	Size      int       `json:"size"`
}

func optionalFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}

	return &v
}

func formula(coeffs []float64) string {
	e, err := regression.NewPolynomialEstimator(coeffs)
	if err != nil {
		return ""
	}

	return e.String()
}

func newPointResponse(p point.Point, bounds point.Bounds) pointResponse {
	return pointResponse{
		ID:        p.ID,
		X:         p.Position.X,
		Y:         p.Position.Y,
		Delta:     p.Delta,
		Returning: p.Returning,
		Relevant:  p.Relevant(bounds),
	}
}

func newSessionResponse(id uuid.UUID, m *curve.Model) sessionResponse {
	bounds := m.Bounds()
	points := m.Points()

	resp := sessionResponse{
		ID:                 id,
		Order:              m.Order(),
		Mode:               m.FitMode().String(),
		ManualCoefficients: m.ManualCoefficients(),
		Coefficients:       m.Coefficients(),
		Formula:            formula(m.Coefficients()),
		ChiSquared:         m.ChiSquared(),
		RSquared:           optionalFloat(m.RSquared()),
		Rank:               m.Rank(),
		Degenerate:         m.Degenerate(),
		CurvePresent:       m.IsCurvePresent(),
		Bounds:             boundsResponse{MinX: bounds.MinX, MaxX: bounds.MaxX, MinY: bounds.MinY, MaxY: bounds.MaxY},
		Points:             make([]pointResponse, 0, len(points)),
	}
	for _, p := range points {
		resp.Points = append(resp.Points, newPointResponse(p, bounds))
	}

	return resp
}

func newFitResponse(m *regression.Model) fitResponse {
	return fitResponse{
		Order:        m.Order,
		Coefficients: m.Coefficients,
		Formula:      m.Formula,
		ChiSquared:   m.ChiSquared,
		RSquared:     optionalFloat(m.RSquared),
		Degenerate:   m.Degenerate,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrSessionNotFound), errors.Is(err, errs.ErrPointNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInsufficientPoints):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrInvalidOrder),
		errors.Is(err, errs.ErrInvalidFitMode),
		errors.Is(err, errs.ErrInvalidCoefficientCount),
		errors.Is(err, errs.ErrNonFiniteValue),
		errors.Is(err, errs.ErrDuplicatePoint),
		errors.Is(err, errs.ErrInvalidSampleCount),
		errors.Is(err, errs.ErrUnsupportedCompression),
		errors.Is(err, errs.ErrSnapshotTooShort),
		errors.Is(err, errs.ErrInvalidSnapshotMagic),
		errors.Is(err, errs.ErrSnapshotChecksumMismatch),
		errors.Is(err, errs.ErrSnapshotLengthMismatch),
		errors.Is(err, errs.ErrSnapshotCorrupted):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}
