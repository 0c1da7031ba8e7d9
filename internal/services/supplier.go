package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/highgoal215/socialsale-backend/internal/config"
	"github.com/highgoal215/socialsale-backend/internal/models"

	"github.com/go-resty/resty/v2"
)

// ErrSupplierDisabled is returned when no supplier API is configured.
var ErrSupplierDisabled = errors.New("supplier API is not configured")

// SupplierService is the typed REST client for the upstream fulfillment
// provider that actually delivers ordered engagement services.
type SupplierService struct {
	client *resty.Client
}

type supplierOrderRequest struct {
	Service  string `json:"service"`
	Quality  string `json:"quality"`
	Link     string `json:"link"`
	Username string `json:"username"`
	Quantity int    `json:"quantity"`
}

type supplierOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

type supplierStatusResponse struct {
	OrderID    string `json:"order_id"`
	Status     string `json:"status"`
	StartCount int    `json:"start_count,omitempty"`
	Remains    int    `json:"remains,omitempty"`
	Error      string `json:"error,omitempty"`
}

func NewSupplierService(cfg *config.Config) *SupplierService {
	if cfg.SupplierAPIURL == "" {
		return &SupplierService{}
	}

	client := resty.New().
		SetBaseURL(cfg.SupplierAPIURL).
		SetHeader("X-Api-Key", cfg.SupplierAPIKey).
		SetTimeout(30 * time.Second).
		SetRetryCount(0)

	return &SupplierService{client: client}
}

func (ss *SupplierService) Enabled() bool {
	return ss.client != nil
}

// PlaceOrder forwards the order to the supplier and returns its order id.
func (ss *SupplierService) PlaceOrder(ctx context.Context, order *models.Order) (string, error) {
	if !ss.Enabled() {
		return "", ErrSupplierDisabled
	}

	req := supplierOrderRequest{
		Service:  order.ServiceType,
		Quality:  order.Quality,
		Link:     order.PostURL,
		Username: order.SocialUsername,
		Quantity: order.Quantity,
	}

	var out supplierOrderResponse
	resp, err := ss.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/orders")
	if err != nil {
		return "", fmt.Errorf("supplier order request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("supplier order rejected: status %d", resp.StatusCode())
	}
	if out.Error != "" {
		return "", fmt.Errorf("supplier order rejected: %s", out.Error)
	}
	return out.OrderID, nil
}

// GetOrderStatus fetches the supplier-side status for a previously placed order.
func (ss *SupplierService) GetOrderStatus(ctx context.Context, supplierOrderID string) (string, error) {
	if !ss.Enabled() {
		return "", ErrSupplierDisabled
	}

	var out supplierStatusResponse
	resp, err := ss.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/orders/" + supplierOrderID)
	if err != nil {
		return "", fmt.Errorf("supplier status request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("supplier status lookup failed: status %d", resp.StatusCode())
	}
	if out.Error != "" {
		return "", fmt.Errorf("supplier status lookup failed: %s", out.Error)
	}
	return out.Status, nil
}
