// internal/service/offer/analysis.go
package offer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"adscreen-service/internal/domain/auth"
	"adscreen-service/internal/domain/offer"
	xerrors "adscreen-service/internal/pkg/errors"

	"go.uber.org/zap"
)

type AnalysisStore interface {
	Create(ctx context.Context, a *offer.Analysis) error
	Finish(ctx context.Context, a *offer.Analysis) error
	ListByOffer(ctx context.Context, offerID int64) ([]offer.Analysis, error)
}

// Analyzer reviews an offer and returns a score with suggestions.
type Analyzer interface {
	Analyze(ctx context.Context, o *offer.Offer) (*offer.AnalysisResult, error)
}

// AnalyzeOffer runs the analyzer for an owned offer. The analysis row is
// persisted before the call and finished either way, so a failed run is
// still visible in the history.
func (s *OfferService) AnalyzeOffer(ctx context.Context, actor auth.Principal, offerID int64) (*offer.Analysis, error) {
	o, err := s.ownedOffer(ctx, actor, offerID)
	if err != nil {
		return nil, err
	}

	a := &offer.Analysis{
		OfferID:     o.ID,
		RequestedBy: actor.UserID,
		Status:      offer.AnalysisStatusPending,
	}
	if err := s.analyses.Create(ctx, a); err != nil {
		return nil, err
	}

	result, runErr := s.analyzer.Analyze(ctx, o)
	if runErr != nil {
		msg := runErr.Error()
		a.Status = offer.AnalysisStatusFailed
		a.Error = &msg
	} else {
		a.Status = offer.AnalysisStatusCompleted
		a.Score = &result.Score
		a.Suggestions = result.Suggestions
		a.Raw = result.Raw
	}

	// The request context may already be cancelled by the failure.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.analyses.Finish(finishCtx, a); err != nil {
		s.logger.Error("failed to store offer analysis",
			zap.Int64("analysis_id", a.ID),
			zap.Error(err))
		return nil, err
	}

	if runErr != nil {
		s.logger.Warn("offer analysis failed",
			zap.Int64("offer_id", o.ID),
			zap.Int64("analysis_id", a.ID),
			zap.Error(runErr))
		return a, fmt.Errorf("analysis %d: %v: %w", a.ID, runErr, xerrors.ErrUpstream)
	}

	s.logger.Info("offer analyzed",
		zap.Int64("offer_id", o.ID),
		zap.Int64("analysis_id", a.ID),
		zap.Int("score", result.Score))
	return a, nil
}

func (s *OfferService) ListAnalyses(ctx context.Context, actor auth.Principal, offerID int64) ([]offer.Analysis, error) {
	if _, err := s.ownedOffer(ctx, actor, offerID); err != nil {
		return nil, err
	}
	return s.analyses.ListByOffer(ctx, offerID)
}

// ErrAnalyzerDisabled is returned when no analysis endpoint is configured.
var ErrAnalyzerDisabled = errors.New("offer analyzer is not configured")

// DisabledAnalyzer fails every run; the failed analysis is still recorded.
type DisabledAnalyzer struct{}

func (DisabledAnalyzer) Analyze(ctx context.Context, o *offer.Offer) (*offer.AnalysisResult, error) {
	return nil, ErrAnalyzerDisabled
}

// HTTPAnalyzer posts the offer to an external analysis endpoint.
type HTTPAnalyzer struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPAnalyzer(endpoint, apiKey string, timeout time.Duration) *HTTPAnalyzer {
	return &HTTPAnalyzer{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	TitleEn         string  `json:"title_en"`
	TitleAr         string  `json:"title_ar"`
	DescriptionEn   *string `json:"description_en,omitempty"`
	DescriptionAr   *string `json:"description_ar,omitempty"`
	OriginalPrice   string  `json:"original_price"`
	DiscountedPrice string  `json:"discounted_price"`
	City            *string `json:"city,omitempty"`
}

func (a *HTTPAnalyzer) Analyze(ctx context.Context, o *offer.Offer) (*offer.AnalysisResult, error) {
	if a.endpoint == "" {
		return nil, fmt.Errorf("analyzer endpoint not configured")
	}

	body, err := json.Marshal(analyzeRequest{
		TitleEn:         o.TitleEn,
		TitleAr:         o.TitleAr,
		DescriptionEn:   o.DescriptionEn,
		DescriptionAr:   o.DescriptionAr,
		OriginalPrice:   o.OriginalPrice.StringFixed(2),
		DiscountedPrice: o.DiscountedPrice.StringFixed(2),
		City:            o.City,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analyzer returned status %d", resp.StatusCode)
	}

	var result offer.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	if result.Score < 0 || result.Score > 100 {
		return nil, fmt.Errorf("analyzer returned score %d out of range", result.Score)
	}
	return &result, nil
}
