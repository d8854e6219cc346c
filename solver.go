/*
Copyright © 2026 the Sketch authors.
This file is part of Sketch.

Sketch is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Sketch is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Sketch.  If not, see <http://www.gnu.org/licenses/>.
*/

package sketch

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultMaxIterations is the number of relaxation sweeps the
	// solver runs before giving up on convergence.
	DefaultMaxIterations = 200

	// DefaultTolerance is the residual below which a constraint
	// counts as satisfied.
	DefaultTolerance = 1.e-6
)

// A SolveResult reports the outcome of one solver run.
type SolveResult struct {
	// Converged reports whether every constraint residual fell within
	// tolerance.
	Converged bool

	// Iterations is the number of sweeps performed.
	Iterations int

	// MaxError is the largest constraint residual at the end of the
	// run.
	MaxError float64
}

// A SolveOption adjusts one solver run.
type SolveOption func(*solverConfig)

type solverConfig struct {
	maxIterations int
	tolerance     float64
}

// MaxIterations overrides the maximum number of relaxation sweeps.
func MaxIterations(n int) SolveOption {
	return func(cfg *solverConfig) { cfg.maxIterations = n }
}

// Tolerance overrides the residual below which constraints count as
// satisfied.
func Tolerance(tol float64) SolveOption {
	return func(cfg *solverConfig) { cfg.tolerance = tol }
}

// Solve runs relaxation sweeps over the scene's constraints until all
// residuals fall within tolerance or the iteration limit is reached,
// then updates dimension geometry from the solved positions. The scene
// is left in the best state found; non-convergence is reported, not
// rolled back.
func (s *Scene) Solve(opts ...SolveOption) SolveResult {
	cfg := solverConfig{maxIterations: DefaultMaxIterations, tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(&cfg)
	}
	s.beginOp()
	defer s.endOp()
	result := s.relax(cfg)
	s.syncDimensions()
	if result.Converged {
		s.Log.WithFields(logrus.Fields{
			"iterations": result.Iterations,
			"maxError":   result.MaxError,
		}).Debug("sketch: solver converged")
	} else {
		s.Log.WithFields(logrus.Fields{
			"iterations": result.Iterations,
			"maxError":   result.MaxError,
		}).Warn("sketch: solver did not converge")
	}
	return result
}

// relax performs Gauss-Seidel sweeps: each constraint's residual is
// measured and, if out of tolerance, its correction applied
// immediately, so later constraints in the same sweep see the moved
// points.
func (s *Scene) relax(cfg solverConfig) SolveResult {
	if len(s.constraints) == 0 {
		return SolveResult{Converged: true}
	}
	for iter := 0; iter < cfg.maxIterations; iter++ {
		maxErr := 0.
		for _, c := range s.constraints {
			e := c.Error()
			if e > maxErr {
				maxErr = e
			}
			if e > cfg.tolerance {
				c.Apply()
			}
		}
		if maxErr <= cfg.tolerance {
			return SolveResult{Converged: true, Iterations: iter + 1, MaxError: maxErr}
		}
	}
	return SolveResult{
		Converged:  false,
		Iterations: cfg.maxIterations,
		MaxError:   floats.Max(s.Residuals()),
	}
}

// Residuals returns the current residual of each constraint in solver
// order. An empty scene returns a single zero so the result is always
// a valid floats argument.
func (s *Scene) Residuals() []float64 {
	if len(s.constraints) == 0 {
		return []float64{0}
	}
	out := make([]float64, len(s.constraints))
	for i, c := range s.constraints {
		out[i] = c.Error()
	}
	return out
}

// MaxResidual returns the largest current constraint residual.
func (s *Scene) MaxResidual() float64 {
	return floats.Max(s.Residuals())
}
