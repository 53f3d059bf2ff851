package scripting

import (
	"context"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rollforge/internal/combo"
)

// ScoreHook is the Lua global function a scoring script must define:
//
//	function distribution_score(dice, distinct, avg_faces) return <number> end
const ScoreHook = "distribution_score"

// Scorer is a combo.DistributionScorer backed by a sandboxed Lua script.
//
// Scorer is safe for concurrent use; calls into the VM are serialized.
// Whenever the script is missing the hook, errors, exceeds its budget, or
// returns a non-number, the fallback scorer's value is used.
type Scorer struct {
	mu        sync.Mutex
	L         *lua.LState
	cancel    context.CancelFunc
	instLimit int
	fallback  combo.DistributionScorer
	logger    *zap.Logger
}

// LoadScorer executes the Lua file at path in a fresh sandbox.
//
// Precondition: path must name a readable Lua file; logger must be non-nil.
// Postcondition: Returns a Scorer or a wrapped load error.
func LoadScorer(path string, instLimit int, fallback combo.DistributionScorer, logger *zap.Logger) (*Scorer, error) {
	return newScorer(func(L *lua.LState) error { return L.DoFile(path) }, path, instLimit, fallback, logger)
}

// LoadScorerString is LoadScorer for in-memory source.
func LoadScorerString(src string, instLimit int, fallback combo.DistributionScorer, logger *zap.Logger) (*Scorer, error) {
	return newScorer(func(L *lua.LState) error { return L.DoString(src) }, "<string>", instLimit, fallback, logger)
}

func newScorer(load func(*lua.LState) error, name string, instLimit int, fallback combo.DistributionScorer, logger *zap.Logger) (*Scorer, error) {
	if fallback == nil {
		fallback = combo.HeuristicScorer{}
	}
	L, cancel := NewSandboxedState(instLimit)
	if err := load(L); err != nil {
		cancel()
		L.Close()
		return nil, fmt.Errorf("scripting: loading %q: %w", name, err)
	}
	if L.GetGlobal(ScoreHook) == lua.LNil {
		logger.Warn("scripting: score hook not defined; using built-in heuristic",
			zap.String("script", name),
			zap.String("hook", ScoreHook),
		)
	}
	return &Scorer{
		L:         L,
		cancel:    cancel,
		instLimit: instLimit,
		fallback:  fallback,
		logger:    logger,
	}, nil
}

// DistributionScore implements combo.DistributionScorer.
func (s *Scorer) DistributionScore(shape combo.Shape) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn := s.L.GetGlobal(ScoreHook)
	if fn == lua.LNil {
		return s.fallback.DistributionScore(shape)
	}

	s.cancel()
	s.cancel = resetBudget(s.L, s.instLimit)

	if err := s.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(shape.Dice), lua.LNumber(shape.Distinct), lua.LNumber(shape.AvgFaces)); err != nil {
		s.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", ScoreHook),
			zap.Error(err),
		)
		return s.fallback.DistributionScore(shape)
	}

	ret := s.L.Get(-1)
	s.L.Pop(1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		s.logger.Warn("scripting: score hook returned a non-number",
			zap.String("hook", ScoreHook),
			zap.String("type", ret.Type().String()),
		)
		return s.fallback.DistributionScore(shape)
	}
	return combo.ClampDistribution(float64(n))
}

// Close releases the Lua VM.
func (s *Scorer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	s.L.Close()
}
