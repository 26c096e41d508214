package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/healthtwin/riskengine/internal/domain/scoring"
	"github.com/healthtwin/riskengine/pkg/logger"
)

const (
	cardiacPath      = "/api/v1/risk/cardiac"
	fatiguePath      = "/api/v1/risk/fatigue"
	assessmentHeader = "X-Assessment-ID"
)

type cardiacRequest struct {
	scoring.CardiacInput
	SubjectID string `json:"subject_id"`
}

type fatigueRequest struct {
	scoring.FatigueInput
	SubjectID string `json:"subject_id"`
}

// outcome is the result of one POST.
type outcome struct {
	ok       bool
	recorded bool
	level    string
	unfit    bool
}

// client wraps http.Client with the engine's base URL.
type client struct {
	http    *http.Client
	baseURL string
	log     logger.Logger
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		log:     logger.Get().Named("seed"),
	}
}

// get performs a GET request and returns the status code.
func (c *client) get(ctx context.Context, path string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// post sends body as JSON with an idempotency key and decodes a 200 reply into out.
func (c *client) post(ctx context.Context, path, key string, body, out any) (http.Header, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", key)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return resp.Header, nil
}

func (c *client) submitCardiac(ctx context.Context, s *Subject) outcome {
	var res scoring.CardiacResult
	h, err := c.post(ctx, cardiacPath, s.ID+":cardiac", cardiacRequest{s.Cardiac, s.ID}, &res)
	if err != nil {
		c.log.Warn(ctx, "cardiac submission failed", logger.String("subject", s.ID), logger.Error(err))
		return outcome{}
	}
	return outcome{ok: true, recorded: h.Get(assessmentHeader) != "", level: string(res.RiskLevel)}
}

func (c *client) submitFatigue(ctx context.Context, s *Subject) outcome {
	var res scoring.FatigueResult
	h, err := c.post(ctx, fatiguePath, s.ID+":fatigue", fatigueRequest{s.Fatigue, s.ID}, &res)
	if err != nil {
		c.log.Warn(ctx, "fatigue submission failed", logger.String("subject", s.ID), logger.Error(err))
		return outcome{}
	}
	return outcome{ok: true, recorded: h.Get(assessmentHeader) != "", level: string(res.RiskLevel), unfit: !res.FitToWork}
}

// submitSubjects posts both assessments for every subject using a worker pool.
func submitSubjects(ctx context.Context, cfg *Config, subjects []Subject, stats *Stats) {
	log := logger.Get().Named("seed")
	log.Info(ctx, "submitting subjects", logger.Int("subjects", len(subjects)), logger.Int("workers", cfg.Workers))

	c := newClient(cfg.BaseURL, cfg.Timeout)

	var (
		mu                           sync.Mutex
		submitted, successful, fails atomic.Int64
		recorded, unfit              atomic.Int64
		wg                           sync.WaitGroup
	)

	tally := func(kind string, o outcome) {
		submitted.Add(1)
		if !o.ok {
			fails.Add(1)
			return
		}
		successful.Add(1)
		if o.recorded {
			recorded.Add(1)
		}
		if o.unfit {
			unfit.Add(1)
		}
		mu.Lock()
		if kind == "cardiac" {
			stats.CardiacLevels[o.level]++
		} else {
			stats.FatigueLevels[o.level]++
		}
		mu.Unlock()
	}

	work := make(chan *Subject, cfg.Workers*workerChannelMultiplier)
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range work {
				if ctx.Err() != nil {
					return
				}
				tally("cardiac", c.submitCardiac(ctx, s))
				tally("fatigue", c.submitFatigue(ctx, s))
				if cfg.Verbose {
					log.Debug(ctx, "subject submitted", logger.String("subject", s.ID), logger.String("profile", s.Profile))
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range subjects {
			select {
			case <-ctx.Done():
				return
			case work <- &subjects[i]:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Successful = int(successful.Load())
	stats.Failed = int(fails.Load())
	stats.Recorded = int(recorded.Load())
	stats.UnfitForWork = int(unfit.Load())
}
