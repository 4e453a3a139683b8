package point

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/curvefit/errs"
)

func TestDeltaLimits_Clamp(t *testing.T) {
	limits := DeltaLimits{Min: 0.1, Max: 5, Default: 1}

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"within range", 2, 2},
		{"zero", 0, 0.1},
		{"negative", -3, 0.1},
		{"NaN", math.NaN(), 0.1},
		{"above max", 7, 5},
		{"positive infinity", math.Inf(1), 5},
		{"exact min", 0.1, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, limits.Clamp(tt.in))
		})
	}
}

func TestDeltaLimits_Validate(t *testing.T) {
	require.NoError(t, DefaultDeltaLimits.Validate())
	require.ErrorIs(t, DeltaLimits{Min: 0, Max: 1, Default: 0.5}.Validate(), errs.ErrInvalidDeltaLimits)
	require.ErrorIs(t, DeltaLimits{Min: 2, Max: 1, Default: 1.5}.Validate(), errs.ErrInvalidDeltaLimits)
	require.ErrorIs(t, DeltaLimits{Min: 0.1, Max: 1, Default: 3}.Validate(), errs.ErrInvalidDeltaLimits)
}

func TestBounds(t *testing.T) {
	b := Bounds{MinX: 0, MaxX: 10, MinY: -1, MaxY: 1}
	require.NoError(t, b.Validate())
	require.True(t, b.Contains(Position{X: 0, Y: -1}))
	require.True(t, b.Contains(Position{X: 10, Y: 1}))
	require.False(t, b.Contains(Position{X: 10.01, Y: 0}))
	require.False(t, b.Contains(Position{X: 5, Y: 1.5}))

	require.ErrorIs(t, Bounds{MinX: 1, MaxX: 1, MinY: 0, MaxY: 1}.Validate(), errs.ErrInvalidBounds)
	require.ErrorIs(t, Bounds{MinX: math.Inf(-1), MaxX: 1, MinY: 0, MaxY: 1}.Validate(), errs.ErrInvalidBounds)
}

func TestNewSet(t *testing.T) {
	_, err := NewSet(Bounds{}, DefaultDeltaLimits)
	require.ErrorIs(t, err, errs.ErrInvalidBounds)

	_, err = NewSet(DefaultBounds, DeltaLimits{})
	require.ErrorIs(t, err, errs.ErrInvalidDeltaLimits)

	s, err := NewSet(DefaultBounds, DefaultDeltaLimits)
	require.NoError(t, err)
	require.Equal(t, 0, s.Len())
	require.Equal(t, DefaultBounds, s.Bounds())
	require.Equal(t, DefaultDeltaLimits, s.DeltaLimits())
}

func TestSet_AddClampsDelta(t *testing.T) {
	s := NewDefaultSet()

	id, err := s.Add(Position{X: 1, Y: 2}, 0)
	require.NoError(t, err)

	p, ok := s.Get(id)
	require.True(t, ok)
	require.Equal(t, DefaultDeltaLimits.Min, p.Delta)
	require.False(t, math.IsInf(p.Weight(), 0))

	_, err = s.Add(Position{X: math.NaN(), Y: 0}, 1)
	require.ErrorIs(t, err, errs.ErrNonFiniteValue)
	require.Equal(t, 1, s.Len())
}

func TestSet_RelevantKeepsInsertionOrder(t *testing.T) {
	s := NewDefaultSet()

	a, _ := s.Add(Position{X: 3, Y: 0}, 1)
	outside, _ := s.Add(Position{X: 50, Y: 0}, 1)
	b, _ := s.Add(Position{X: -2, Y: 1}, 1)
	returning, _ := s.Add(Position{X: 1, Y: 1}, 1)
	c, _ := s.Add(Position{X: 0, Y: 0}, 1)

	require.NoError(t, s.SetReturning(returning, true))

	relevant := s.Relevant()
	require.Len(t, relevant, 3)
	require.Equal(t, []uuid.UUID{a, b, c}, []uuid.UUID{relevant[0].ID, relevant[1].ID, relevant[2].ID})

	all := s.All()
	require.Len(t, all, 5)
	require.Equal(t, outside, all[1].ID)

	require.NoError(t, s.SetReturning(returning, false))
	require.Len(t, s.Relevant(), 4)
}

func TestSet_UniqueXCount(t *testing.T) {
	s := NewDefaultSet()
	_, _ = s.Add(Position{X: 1, Y: 1}, 1)
	_, _ = s.Add(Position{X: 1, Y: 5}, 1)
	_, _ = s.Add(Position{X: 2, Y: 5}, 1)
	off, _ := s.Add(Position{X: 20, Y: 5}, 1)

	require.Equal(t, 2, s.UniqueXCount())

	require.NoError(t, s.SetPosition(off, Position{X: 3, Y: 0}))
	require.Equal(t, 3, s.UniqueXCount())

	require.Equal(t, 0, UniqueXCount(nil))
}

func TestSet_Mutations(t *testing.T) {
	s := NewDefaultSet()
	id, err := s.Add(Position{X: 1, Y: 1}, 1)
	require.NoError(t, err)

	require.NoError(t, s.SetDelta(id, 100))
	p, _ := s.Get(id)
	require.Equal(t, DefaultDeltaLimits.Max, p.Delta)

	require.ErrorIs(t, s.SetPosition(id, Position{X: math.Inf(1)}), errs.ErrNonFiniteValue)

	missing := uuid.New()
	require.ErrorIs(t, s.Remove(missing), errs.ErrPointNotFound)
	require.ErrorIs(t, s.SetDelta(missing, 1), errs.ErrPointNotFound)
	require.ErrorIs(t, s.SetReturning(missing, true), errs.ErrPointNotFound)
	require.ErrorIs(t, s.SetPosition(missing, Position{}), errs.ErrPointNotFound)

	require.NoError(t, s.Remove(id))
	_, ok := s.Get(id)
	require.False(t, ok)
	require.Equal(t, 0, s.Len())
}

func TestSet_Insert(t *testing.T) {
	s := NewDefaultSet()
	id := uuid.New()

	got, err := s.Insert(Point{ID: id, Position: Position{X: 1, Y: 1}, Delta: -1, Returning: true})
	require.NoError(t, err)
	require.Equal(t, id, got)

	p, ok := s.Get(id)
	require.True(t, ok)
	require.True(t, p.Returning)
	require.Equal(t, DefaultDeltaLimits.Min, p.Delta)

	_, err = s.Insert(Point{ID: id, Position: Position{X: 2, Y: 2}, Delta: 1})
	require.ErrorIs(t, err, errs.ErrDuplicatePoint)

	fresh, err := s.Insert(Point{Position: Position{X: 2, Y: 2}, Delta: 1})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, fresh)
	require.Equal(t, 2, s.Len())
}

func TestSet_Clear(t *testing.T) {
	s := NewDefaultSet()
	_, _ = s.Add(Position{X: 1, Y: 1}, 1)
	_, _ = s.Add(Position{X: 2, Y: 1}, 1)

	snapshot := s.All()
	s.Clear()

	require.Equal(t, 0, s.Len())
	require.Empty(t, s.Relevant())
	require.Len(t, snapshot, 2, "All must return an independent copy")
}
