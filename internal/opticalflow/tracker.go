package opticalflow

import (
	"fmt"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/arrayutil"
	"github.com/banshee-data/echoflow/internal/filter"
	"github.com/banshee-data/echoflow/internal/monitoring"
)

// Tracker estimates flow between fields of one fixed grid size. Each call
// allocates its own scratch space, so a Tracker may be shared between
// goroutines.
type Tracker struct {
	cfg    Config
	basis  *polyBasis
	levels []Level
}

// NewTracker validates cfg and precomputes the expansion basis and the
// pyramid plan. A basis that cannot be inverted is fatal.
func NewTracker(cfg Config) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	basis, err := newPolyBasis(cfg.PolyN, cfg.PolySigma)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		cfg:    cfg,
		basis:  basis,
		levels: PlanLevels(cfg.Rows, cfg.Cols, cfg.Scale, cfg.Levels),
	}, nil
}

// Config returns the configuration the tracker was built with.
func (t *Tracker) Config() Config { return t.cfg }

// Levels returns the pyramid plan, finest first.
func (t *Tracker) Levels() []Level {
	out := make([]Level, len(t.levels))
	copy(out, t.levels)
	return out
}

// workspace is the scratch state of one tracking call. Every buffer is
// sized for the finest level and narrowed with HackSize for coarser ones.
type workspace struct {
	smooth [2]*array.Array2[float32]
	img    [2]*array.Array2[float32]
	poly   [2]*array.Array2[Vec5]
	sys    *array.Array2[Vec5]
	// flow[k%2] holds the (u, v) estimate of level k > 0.
	flow [2][2]*array.Array2[float32]
	row  *polyRow
	vsum *vsumRow
}

func (t *Tracker) newWorkspace() *workspace {
	rows, cols := t.cfg.Rows, t.cfg.Cols
	ws := &workspace{
		sys:  array.New2[Vec5](rows, cols),
		row:  newPolyRow(cols, t.cfg.PolyN),
		vsum: newVsumRow(cols, t.cfg.WindowSize/2),
	}
	for i := range ws.poly {
		ws.poly[i] = array.New2[Vec5](rows, cols)
	}
	if len(t.levels) > 1 {
		coarse := t.levels[1]
		for i := range ws.smooth {
			ws.smooth[i] = array.New2[float32](rows, cols)
			ws.img[i] = array.New2[float32](coarse.Rows, coarse.Cols)
			ws.flow[i] = [2]*array.Array2[float32]{
				array.New2[float32](coarse.Rows, coarse.Cols),
				array.New2[float32](coarse.Rows, coarse.Cols),
			}
		}
	}
	return ws
}

func (t *Tracker) checkShape(op string, fields ...*array.Array2[float32]) error {
	for _, f := range fields {
		if f.Rows() != t.cfg.Rows || f.Cols() != t.cfg.Cols {
			return &arrayutil.ShapeError{
				Op:   op,
				Want: [2]int{t.cfg.Rows, t.cfg.Cols},
				Got:  [2]int{f.Rows(), f.Cols()},
			}
		}
	}
	return nil
}

// TrackFields estimates the flow (u, v) that carries prev onto next:
// next(y+v, x+u) ~ prev(y, x). With useInitialFlow the incoming (u, v) seed
// the coarsest level; otherwise they are overwritten.
func (t *Tracker) TrackFields(prev, next, u, v *array.Array2[float32], useInitialFlow bool) error {
	if err := t.checkShape("track_fields", prev, next, u, v); err != nil {
		return err
	}
	if t.cfg.Verbose {
		for _, lv := range t.levels {
			monitoring.Logf("[opticalflow] level %d: %dx%d scale=%.4f sigma=%.3f kernel=%d",
				lv.Index, lv.Rows, lv.Cols, lv.Scale, lv.Sigma, lv.KernelSize)
		}
	}

	ws := t.newWorkspace()
	var prevU, prevV *array.Array2[float32]
	for k := len(t.levels) - 1; k >= 0; k-- {
		lv := t.levels[k]

		cu, cv := u, v
		if k > 0 {
			cu, cv = ws.flow[k%2][0], ws.flow[k%2][1]
			cu.HackSize(lv.Rows, lv.Cols)
			cv.HackSize(lv.Rows, lv.Cols)
		}
		if err := t.seedFlow(lv, cu, cv, prevU, prevV, u, v, useInitialFlow); err != nil {
			return fmt.Errorf("level %d: %w", k, err)
		}

		for i, src := range [2]*array.Array2[float32]{prev, next} {
			img, err := t.levelField(ws, i, lv, src)
			if err != nil {
				return fmt.Errorf("level %d: %w", k, err)
			}
			ws.poly[i].HackSize(lv.Rows, lv.Cols)
			t.basis.PolyExpansion(ws.poly[i], img, ws.row)
		}

		ws.sys.HackSize(lv.Rows, lv.Cols)
		UpdateMatrices(ws.poly[0], ws.poly[1], cu, cv, ws.sys, 0, lv.Rows)
		for i := 0; i < t.cfg.Iterations; i++ {
			BlurIteration(ws.poly[0], ws.poly[1], cu, cv, ws.sys, t.cfg.WindowSize, i < t.cfg.Iterations-1, ws.vsum)
		}
		prevU, prevV = cu, cv
	}
	return nil
}

// seedFlow initialises the flow of level lv: from the coarser level's
// result when there is one, otherwise from the caller's flow or zero.
func (t *Tracker) seedFlow(lv Level, cu, cv, prevU, prevV, u, v *array.Array2[float32], useInitialFlow bool) error {
	switch {
	case prevU != nil:
		if err := arrayutil.Interpolate(cu, prevU); err != nil {
			return err
		}
		if err := arrayutil.Interpolate(cv, prevV); err != nil {
			return err
		}
		s := float32(1 / t.cfg.Scale)
		arrayutil.Scale(cu, s)
		arrayutil.Scale(cv, s)
	case useInitialFlow:
		if err := arrayutil.Interpolate(cu, u); err != nil {
			return err
		}
		if err := arrayutil.Interpolate(cv, v); err != nil {
			return err
		}
		arrayutil.Scale(cu, float32(lv.Scale))
		arrayutil.Scale(cv, float32(lv.Scale))
	default:
		arrayutil.Zero(cu)
		arrayutil.Zero(cv)
	}
	return nil
}

// levelField returns field i resampled to level lv. Level 0 uses src
// directly; coarser levels smooth a full-resolution copy first.
func (t *Tracker) levelField(ws *workspace, i int, lv Level, src *array.Array2[float32]) (*array.Array2[float32], error) {
	if lv.Index == 0 {
		return src, nil
	}
	sm := ws.smooth[i]
	copy(sm.Data(), src.Data())
	if err := filter.GaussianBlur(sm, lv.KernelSize, lv.Sigma); err != nil {
		return nil, err
	}
	img := ws.img[i]
	img.HackSize(lv.Rows, lv.Cols)
	if err := arrayutil.Interpolate(img, sm); err != nil {
		return nil, err
	}
	return img, nil
}
