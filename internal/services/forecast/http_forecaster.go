package forecast

import (
	"context"
	"fmt"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/domain/service"
	xhttp "TradePulse/pkg/http"
)

// HTTPForecaster calls an external inference service over JSON/HTTP.
// The model internals are opaque here; failures are surfaced to the
// caller, which degrades to trend-only evaluation.
type HTTPForecaster struct {
	baseURL string
	client  *xhttp.Client
}

var _ service.Forecaster = (*HTTPForecaster)(nil)

// NewHTTPForecaster builds a forecaster client against baseURL. A
// non-positive timeout means 3s.
func NewHTTPForecaster(baseURL string, timeout time.Duration) *HTTPForecaster {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPForecaster{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type predictRequest struct {
	Pair   string         `json:"pair"`
	Window []predictPoint `json:"window"`
}

type predictPoint struct {
	Timestamp int64   `json:"timestamp"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

type predictResponse struct {
	PredictedPrice float64 `json:"predicted_price"`
	Confidence     float64 `json:"confidence"`
	PriceChangePct float64 `json:"price_change_pct"`
}

// Predict posts the window tail to the inference service and maps the
// response. Confidence outside [0,1] is clamped.
func (f *HTTPForecaster) Predict(ctx context.Context, pair string, window []models.PricePoint) (models.ForecastResult, error) {
	if f.baseURL == "" {
		return models.ForecastResult{}, fmt.Errorf("forecast: no service configured")
	}

	req := predictRequest{Pair: pair, Window: make([]predictPoint, 0, len(window))}
	for _, p := range window {
		req.Window = append(req.Window, predictPoint{
			Timestamp: p.Timestamp.Unix(),
			Close:     p.Close,
			Volume:    p.Volume,
		})
	}

	var resp predictResponse
	err := f.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     f.baseURL + "/predict",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    req,
	}, &resp)
	if err != nil {
		return models.ForecastResult{}, fmt.Errorf("forecast predict %s: %w", pair, err)
	}

	conf := resp.Confidence
	if conf < 0 {
		conf = 0
	} else if conf > 1 {
		conf = 1
	}
	return models.ForecastResult{
		PredictedPrice: resp.PredictedPrice,
		Confidence:     conf,
		PriceChangePct: resp.PriceChangePct,
	}, nil
}
