package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rollforge/internal/combo"
	"github.com/cory-johannsen/rollforge/internal/config"
	"github.com/cory-johannsen/rollforge/internal/dice"
	"github.com/cory-johannsen/rollforge/internal/labels"
)

// Suggestions is the result of Service.Generate.
type Suggestions struct {
	Candidates []combo.Candidate
	// Origin is OriginAI when the model's suggestions were used.
	Origin combo.Origin
	// Fallback explains why the model was not used; nil when Origin is OriginAI.
	Fallback error
}

// AnalysisRequest asks for an analysis of one macro.
type AnalysisRequest struct {
	Macro string
	// Target optionally names the range the macro is meant to cover.
	Target *combo.Request
	// Language is a BCP 47 tag; empty selects the configured default.
	Language string
}

// Analysis is the result of Service.Analyze.
type Analysis struct {
	Macro     string
	Unparsed  []string
	Stats     dice.Stats
	Histogram dice.Histogram

	// Exact is true when Histogram is the theoretical distribution.
	Exact  bool
	Trials int

	// Target is the range Candidate was scored against; the macro's own
	// range unless HasTarget.
	Target    combo.Request
	HasTarget bool
	Candidate combo.Candidate
	Text      string
	Origin    combo.Origin
	Fallback  error
}

// Service combines the local engine with an optional MessageClient.
type Service struct {
	client  MessageClient
	gen     *combo.Generator
	roller  *dice.Roller
	catalog *labels.Catalog
	cfg     config.AIConfig
	trials  int
	logger  *zap.Logger
}

// NewService creates a Service. A nil client, or cfg.Enabled == false,
// disables the model and every call is served locally.
//
// Precondition: gen, roller, catalog and logger must be non-nil; trials > 0.
func NewService(client MessageClient, gen *combo.Generator, roller *dice.Roller, catalog *labels.Catalog, cfg config.AIConfig, trials int, logger *zap.Logger) *Service {
	return &Service{
		client:  client,
		gen:     gen,
		roller:  roller,
		catalog: catalog,
		cfg:     cfg,
		trials:  trials,
		logger:  logger,
	}
}

// Enabled reports whether the model is consulted.
func (s *Service) Enabled() bool {
	return s.client != nil && s.cfg.Enabled
}

// Generate returns ranked candidates for req. Model suggestions are parsed,
// filtered to the requested faces and rescored locally; on any failure the
// deterministic generator answers instead.
//
// Postcondition: Candidates satisfy the same invariants as combo.Generator.Generate.
func (s *Service) Generate(ctx context.Context, req combo.Request) Suggestions {
	req = req.Normalized()
	log := s.logger.With(zap.String("request_id", uuid.NewString()), zap.String("op", "generate"))

	cands, err := s.suggest(ctx, req)
	if err == nil {
		log.Info("enrichment served", zap.String("source", string(combo.OriginAI)), zap.Int("candidates", len(cands)))
		return Suggestions{Candidates: cands, Origin: combo.OriginAI}
	}
	if !errors.Is(err, ErrDisabled) {
		log.Warn("enrichment failed; using fallback generator", zap.Error(err))
	}
	cands = s.gen.Generate(req)
	log.Info("enrichment served", zap.String("source", string(combo.OriginFallback)), zap.Int("candidates", len(cands)))
	return Suggestions{Candidates: cands, Origin: combo.OriginFallback, Fallback: err}
}

func (s *Service) suggest(ctx context.Context, req combo.Request) ([]combo.Candidate, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	reply, err := s.client.Complete(ctx, suggestSystem, suggestPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	macros, err := parseSuggestions(reply)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}

	faces := combo.ParseFaces(req.Faces)
	proposals := make([]dice.ParsedMacro, 0, len(macros))
	for _, m := range macros {
		p := dice.Parse(m)
		if !p.Complete() || len(p.Terms) == 0 || !faces.Allows(p) {
			s.logger.Debug("rejected suggestion", zap.String("macro", m))
			continue
		}
		proposals = append(proposals, p)
	}
	if len(proposals) == 0 {
		return nil, ErrNoUsableSuggestions
	}
	return s.gen.Rank(req, proposals, combo.OriginAI), nil
}

// Analyze computes the statistics and distribution of req.Macro locally and
// describes them, through the model when enabled and from the label catalog
// otherwise.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest) Analysis {
	lang := req.Language
	if lang == "" {
		lang = s.cfg.Language
	}
	log := s.logger.With(zap.String("request_id", uuid.NewString()), zap.String("op", "analyze"))

	p := dice.Parse(req.Macro)
	st := dice.ComputeStats(p)
	_, exact := p.SingleDie()
	target := combo.Request{TargetMin: st.Min, TargetMax: st.Max}
	if req.Target != nil {
		target = req.Target.Normalized()
	}
	a := Analysis{
		Macro:     p.String(),
		Unparsed:  p.Unparsed,
		Stats:     st,
		Histogram: s.roller.Distribution(req.Macro, s.trials),
		Exact:     exact,
		Trials:    s.trials,
		Target:    target,
		HasTarget: req.Target != nil,
		Candidate: s.gen.Evaluate(target, p, combo.OriginFallback),
	}

	text, err := s.describe(ctx, p, st, req.Target, lang)
	if err == nil {
		a.Text, a.Origin = text, combo.OriginAI
		log.Info("enrichment served", zap.String("source", string(combo.OriginAI)), zap.String("macro", a.Macro))
		return a
	}
	if !errors.Is(err, ErrDisabled) {
		log.Warn("enrichment failed; using local summary", zap.Error(err))
	}
	a.Origin, a.Fallback = combo.OriginFallback, err
	a.Text = s.Summary(a, lang)
	log.Info("enrichment served", zap.String("source", string(combo.OriginFallback)), zap.String("macro", a.Macro))
	return a
}

func (s *Service) describe(ctx context.Context, p dice.ParsedMacro, st dice.Stats, target *combo.Request, lang string) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	reply, err := s.client.Complete(ctx, analyzeSystem, analyzePrompt(p, st, target, lang))
	if err != nil {
		return "", fmt.Errorf("analyze: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

// Summary describes a in lang using the label catalog. A notice is
// prepended when a.Fallback records a model failure.
func (s *Service) Summary(a Analysis, lang string) string {
	c := a.Candidate
	parts := []string{}
	if a.Fallback != nil && !errors.Is(a.Fallback, ErrDisabled) {
		parts = append(parts, s.catalog.Text(lang, "analysis.fallbackNotice", nil))
	}
	parts = append(parts,
		s.catalog.Text(lang, "analysis.summary", map[string]any{
			"macro": a.Macro,
			"min":   a.Stats.Min,
			"max":   a.Stats.Max,
			"avg":   fmt.Sprintf("%.2f", a.Stats.Average),
		}),
		s.catalog.Text(lang, "analysis.shape", map[string]any{
			"shape": s.catalog.Text(lang, c.DistributionLabel.Key(), nil),
		}),
	)
	if a.HasTarget {
		parts = append(parts, s.catalog.Text(lang, "analysis.fit", map[string]any{
			"targetMin": a.Target.TargetMin,
			"targetMax": a.Target.TargetMax,
			"fit":       s.catalog.Text(lang, c.FitLabel.Key(), nil),
		}))
	}
	if peak, ok := a.Histogram.Peak(); ok {
		parts = append(parts, s.catalog.Text(lang, "analysis.mostLikely", map[string]any{
			"total":   peak.Total,
			"percent": fmt.Sprintf("%.1f", 100*peak.Weight/a.Histogram.Weight()),
		}))
	}
	return strings.Join(parts, " ")
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, s.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}
