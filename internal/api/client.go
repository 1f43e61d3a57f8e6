package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storekeep/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client-side self-throttle so refresh storms and the order enrichment
// fan-out cannot hammer the backend.
const (
	limitCalls = rate.Limit(20)
	burstCalls = 40
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		logger.L().Warn("API base URL is empty")
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(limitCalls, burstCalls),
	}
}

// do issues a JSON request and decodes the response into out (when out
// is non-nil). Non-2xx statuses become errors carrying the response text.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	log := logger.FromCtx(ctx).With(
		zap.String("method", method),
		zap.String("path", path),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			log.Error("Failed to marshal request body", zap.Error(err))
			return err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Backend request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return fmt.Errorf("failed to read backend response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Error("Backend returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return fmt.Errorf("backend error (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	if out != nil {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			log.Error("Failed decoding backend response", zap.Error(err))
			return err
		}
	}

	return nil
}

// ----------------- Authentication -----------------

func (c *Client) CheckUsername(ctx context.Context, username string) (*CheckUsernameResponse, error) {
	log := logger.FromCtx(ctx).With(zap.String("username", username))

	var res CheckUsernameResponse
	err := c.do(ctx, http.MethodPost, "/stores/check-username", map[string]string{
		"username": username,
	}, &res)
	if err != nil {
		return nil, err
	}

	log.Info("username check completed", zap.Bool("success", res.Success))
	return &res, nil
}

func (c *Client) VerifyPassword(ctx context.Context, username, password string) (*VerifyPasswordResponse, error) {
	log := logger.FromCtx(ctx).With(zap.String("username", username))

	var res VerifyPasswordResponse
	err := c.do(ctx, http.MethodPost, "/stores/verify-password", map[string]string{
		"username": username,
		"password": password,
	}, &res)
	if err != nil {
		return nil, err
	}

	log.Info("password verification completed", zap.Bool("matches", res.PasswordMatches))
	return &res, nil
}

// ----------------- Stores -----------------

func (c *Client) RegisterStore(ctx context.Context, input RegisterStoreInput) (*Store, error) {
	log := logger.FromCtx(ctx).With(zap.String("username", input.Username))

	var store Store
	if err := c.do(ctx, http.MethodPost, "/stores", input, &store); err != nil {
		return nil, err
	}

	log.Info("store registered", zap.String("store_id", store.ID))
	return &store, nil
}

func (c *Client) GetStore(ctx context.Context, storeID string) (*Store, error) {
	var store Store
	if err := c.do(ctx, http.MethodGet, "/stores/"+storeID, nil, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

func (c *Client) UpdateStore(ctx context.Context, storeID string, patch StorePatch) (*Store, error) {
	var store Store
	if err := c.do(ctx, http.MethodPut, "/stores/"+storeID, patch, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

func (c *Client) SaveStoreLocation(ctx context.Context, storeID string, lat, lng float64) (*Store, error) {
	var store Store
	err := c.do(ctx, http.MethodPut, "/stores/"+storeID+"/location", map[string]float64{
		"lat": lat,
		"lng": lng,
	}, &store)
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// ----------------- Products -----------------

func (c *Client) ProductsByStore(ctx context.Context, storeID string) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/stores/"+storeID+"/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) ProductByID(ctx context.Context, productID string) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, "/products/"+productID, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) AddProduct(ctx context.Context, storeID string, input ProductInput) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodPost, "/stores/"+storeID+"/products", input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, productID string, input ProductInput) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodPut, "/products/"+productID, input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+productID, nil, nil)
}

// ----------------- Orders -----------------

func (c *Client) OrdersByStore(ctx context.Context, storeID string) ([]OrderRecord, error) {
	var orders []OrderRecord
	if err := c.do(ctx, http.MethodGet, "/stores/"+storeID+"/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) (*OrderRecord, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", orderID),
		zap.String("status", status),
	)

	var order OrderRecord
	err := c.do(ctx, http.MethodPut, "/orders/"+orderID+"/status", map[string]string{
		"status": status,
	}, &order)
	if err != nil {
		return nil, err
	}

	log.Info("order status updated")
	return &order, nil
}
