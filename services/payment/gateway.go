// Package paysvc implements the payment gateway lookup used to refresh
// invoice statuses.
package paysvc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/billing"
)

type httpGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ billing.Gateway = (*httpGateway)(nil)

func NewHTTPGateway(conf *core.Config) billing.Gateway {
	return &httpGateway{
		baseURL: conf.Gateway.BaseURL,
		apiKey:  conf.Gateway.APIKey,
		client:  &http.Client{Timeout: conf.Gateway.Timeout},
	}
}

type chargeResponse struct {
	Status      string    `json:"status"`
	PaidAt      time.Time `json:"paid_at"`
	AmountCents int64     `json:"amount_cents"`
}

func (g *httpGateway) PaymentStatus(ctx context.Context, ref string) (billing.PaymentStatus, error) {
	if g.baseURL == "" {
		return billing.PaymentStatus{}, errors.New("payment gateway base URL is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/charges/"+ref, nil)
	if err != nil {
		return billing.PaymentStatus{}, errors.Wrap(err, "building gateway request")
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	res, err := g.client.Do(req)
	if err != nil {
		return billing.PaymentStatus{}, errors.Wrap(err, "querying gateway charge")
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return billing.PaymentStatus{}, errors.Errorf("gateway responded %d for charge %s", res.StatusCode, ref)
	}

	var charge chargeResponse
	if err := json.NewDecoder(res.Body).Decode(&charge); err != nil {
		return billing.PaymentStatus{}, errors.Wrap(err, "decoding gateway response")
	}
	return billing.PaymentStatus{
		Paid:        charge.Status == "paid" || charge.Status == "succeeded",
		PaidAt:      charge.PaidAt,
		AmountCents: charge.AmountCents,
	}, nil
}

// GatewayMock serves canned statuses keyed by charge reference.
type GatewayMock struct {
	Statuses map[string]billing.PaymentStatus
	Err      error
}

var _ billing.Gateway = (*GatewayMock)(nil)

func (g *GatewayMock) PaymentStatus(_ context.Context, ref string) (billing.PaymentStatus, error) {
	if g.Err != nil {
		return billing.PaymentStatus{}, g.Err
	}
	status, ok := g.Statuses[ref]
	if !ok {
		return billing.PaymentStatus{}, errors.Errorf("unknown charge %s", ref)
	}
	return status, nil
}
