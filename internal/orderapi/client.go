// Package orderapi is the HTTP/JSON client for the remote order and
// payment API. The contract is consumed, not defined, here: order
// creation, batch order lines, payment creation and the payment-url
// lookup that the gateway redirect starts from.
package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Order struct {
	OrderID    int64   `json:"orderId"`
	TotalPrice float64 `json:"totalPrice"`
	Status     string  `json:"status,omitempty"`
}

type OrderLine struct {
	OrderID   int64   `json:"orderId"`
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Payment struct {
	PaymentID int64 `json:"paymentId"`
}

type CreateOrderRequest struct {
	TotalPrice      float64 `json:"totalPrice"`
	ShippingAddress string  `json:"shippingAddress"`
	Status          string  `json:"status"`
}

type paymentURLResponse struct {
	PaymentURL string `json:"paymentUrl"`
}

// Client talks to the order/payment API through a shared circuit
// breaker, so a flapping backend fails fast instead of queueing the
// shopper behind timeouts.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	settings := gobreaker.Settings{
		Name:    "order-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// CreateOrder posts the staged total with a placeholder shipping
// address; the real address is collected server-side after payment.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	body, err := c.do(ctx, http.MethodPost, "/orders", nil, req)
	if err != nil {
		return nil, err
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}
	return &order, nil
}

// CreateOrderLines submits all line records in one batch. There is no
// partial rollback on failure; the server keeps the order header.
func (c *Client) CreateOrderLines(ctx context.Context, lines []OrderLine) error {
	_, err := c.do(ctx, http.MethodPost, "/orderdetails", nil, lines)
	return err
}

func (c *Client) CreatePayment(ctx context.Context, orderID int64, amount float64, paymentMethodID int) (*Payment, error) {
	query := url.Values{
		"orderId":         {strconv.FormatInt(orderID, 10)},
		"paymentMethodId": {strconv.Itoa(paymentMethodID)},
	}
	body, err := c.do(ctx, http.MethodPost, "/payments", query, map[string]float64{"amount": amount})
	if err != nil {
		return nil, err
	}

	var payment Payment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, fmt.Errorf("failed to decode payment response: %w", err)
	}
	return &payment, nil
}

// PaymentURL asks the gateway for the redirect URL, passing the page the
// shopper must land back on.
func (c *Client) PaymentURL(ctx context.Context, paymentID int64, redirectURL string) (string, error) {
	query := url.Values{"redirectUrl": {redirectURL}}
	path := fmt.Sprintf("/payments/%d/payment-url", paymentID)
	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return "", err
	}

	var resp paymentURLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode payment-url response: %w", err)
	}
	return resp.PaymentURL, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		var reqBody io.Reader
		if payload != nil {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal request: %w", err)
			}
			reqBody = bytes.NewReader(data)
		}

		target := c.baseURL + path
		if len(query) > 0 {
			target += "?" + query.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, truncate(body))
		}
		return body, nil
	})
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
