package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"english_analyzer/metrics"
)

// Agent 串联提示词构建、生成、提取、校验与渲染映射。
type Agent struct {
	gen    Generator
	source ConfigSource
	logger *slog.Logger
}

func NewAgent(gen Generator, source ConfigSource, logger *slog.Logger) (*Agent, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if source == nil {
		return nil, errors.New("config source is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{gen: gen, source: source, logger: logger}, nil
}

// Analyze runs the pipeline once. It returns either a Result carrying exactly
// one analysis, or a zero Result and an *Error. Nothing is retried.
//
// The request is normalized with NewRequest first; empty text or an unknown
// mode fails with ErrEmptyText or ErrInvalidMode instead of an *Error, since
// no pipeline stage has run yet.
func (a *Agent) Analyze(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	res, err := a.run(ctx, req)

	log := a.logger.With("mode", req.Mode, "duration", time.Since(start))
	if err != nil {
		kind := "unknown"
		if errors.Is(err, ErrEmptyText) || errors.Is(err, ErrInvalidMode) {
			kind = "invalid_request"
		}
		if ae, ok := AsError(err); ok {
			kind = string(ae.Kind)
			log = log.With("kind", ae.Kind, "stage", ae.Kind.Stage())
			if ae.Field != "" {
				log = log.With("field", ae.Field)
			}
		}
		metrics.AnalysisTotal.WithLabelValues(string(req.Mode), kind).Inc()
		log.Warn("analysis failed", "error", err)
		return Result{}, err
	}
	metrics.AnalysisTotal.WithLabelValues(string(req.Mode), "ok").Inc()
	log.Info("analysis done")
	return res, nil
}

func (a *Agent) run(ctx context.Context, req Request) (Result, error) {
	req, err := NewRequest(req.Text, req.Mode)
	if err != nil {
		return Result{}, err
	}
	cfg := a.source()
	prompt := BuildPrompt(req.Text, req.Mode)

	callStart := time.Now()
	raw, err := a.gen.Generate(ctx, prompt, cfg)
	metrics.GenerationCallDuration.WithLabelValues(cfg.Model).Observe(time.Since(callStart).Seconds())
	if err != nil {
		ae, ok := AsError(err)
		if !ok {
			ae = newError(KindTransport, "generation failed", err)
		}
		ae.Mode = req.Mode
		metrics.GenerationCallTotal.WithLabelValues(cfg.Model, string(ae.Kind)).Inc()
		return Result{}, ae
	}
	metrics.GenerationCallTotal.WithLabelValues(cfg.Model, "ok").Inc()

	if err := ctx.Err(); err != nil {
		return Result{}, &Error{Kind: KindTransport, Mode: req.Mode, Message: "request canceled by caller", Err: err}
	}

	candidate, err := Extract(raw.Text, req.Mode)
	if err != nil {
		a.logger.Debug("extraction failed", "mode", req.Mode, "raw_len", len(raw.Text))
		return Result{}, err
	}

	validated, err := Validate(candidate, req.Mode)
	if err != nil {
		return Result{}, err
	}

	res := Result{Mode: req.Mode, Render: ToRenderModel(validated)}
	switch v := validated.(type) {
	case *WordAnalysis:
		res.Word = v
	case *SentenceAnalysis:
		res.Sentence = v
	}
	return res, nil
}
