// Package oracle is the optional predictive-scoring capability. The engine
// treats it as best effort: any failure maps to "predictive unavailable",
// never to a failed evaluation cycle.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnavailable is returned when no predictive backend is configured.
var ErrUnavailable = errors.New("predictive scoring unavailable")

// FaultPrediction names the most likely developing fault.
type FaultPrediction struct {
	Label       string  `json:"fault_type"`
	Probability float64 `json:"probability"`
}

// Client scores one cycle's working dataset. ScoreAnomaly returns the
// anomaly fraction in [0,1], where 0 means fully nominal behavior.
// PredictFault classifies the likely fault when the anomaly is elevated.
type Client interface {
	ScoreAnomaly(ctx context.Context, fields map[string]float64) (float64, error)
	PredictFault(ctx context.Context, fields map[string]float64) (FaultPrediction, error)
}

// Disabled satisfies Client when predictive scoring is turned off.
type Disabled struct{}

func (Disabled) ScoreAnomaly(context.Context, map[string]float64) (float64, error) {
	return 0, ErrUnavailable
}

func (Disabled) PredictFault(context.Context, map[string]float64) (FaultPrediction, error) {
	return FaultPrediction{}, ErrUnavailable
}

// HTTPClient calls an external scoring service over JSON.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds a client against baseURL. The timeout bounds the
// whole request so a slow backend cannot stall the evaluation loop.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type scoreRequest struct {
	Features map[string]float64 `json:"features"`
}

type scoreResponse struct {
	AnomalyScore float64 `json:"anomaly_score"`
}

func (c *HTTPClient) ScoreAnomaly(ctx context.Context, fields map[string]float64) (float64, error) {
	body, err := json.Marshal(scoreRequest{Features: fields})
	if err != nil {
		return 0, fmt.Errorf("encode score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("score request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("score request: unexpected status %d", resp.StatusCode)
	}

	var sr scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return 0, fmt.Errorf("decode score response: %w", err)
	}
	if sr.AnomalyScore < 0 || sr.AnomalyScore > 1 {
		return 0, fmt.Errorf("score out of range: %v", sr.AnomalyScore)
	}
	return sr.AnomalyScore, nil
}

func (c *HTTPClient) PredictFault(ctx context.Context, fields map[string]float64) (FaultPrediction, error) {
	body, err := json.Marshal(scoreRequest{Features: fields})
	if err != nil {
		return FaultPrediction{}, fmt.Errorf("encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return FaultPrediction{}, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return FaultPrediction{}, fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FaultPrediction{}, fmt.Errorf("predict request: unexpected status %d", resp.StatusCode)
	}

	var fp FaultPrediction
	if err := json.NewDecoder(resp.Body).Decode(&fp); err != nil {
		return FaultPrediction{}, fmt.Errorf("decode predict response: %w", err)
	}
	if fp.Probability < 0 || fp.Probability > 1 {
		return FaultPrediction{}, fmt.Errorf("probability out of range: %v", fp.Probability)
	}
	return fp, nil
}

// PredictiveScore converts the anomaly fraction into the 0-100 health scale
// used by the other component scores.
func PredictiveScore(anomaly float64) float64 {
	return 100 * (1 - anomaly)
}
