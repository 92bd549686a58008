// Package bookingclient HTTP клиент операций доступности и бронирования.
package bookingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const dateFormat = "2006-01-02"

// Option настройка клиента
type Option func(*Client)

// WithToken задает bearer-токен для защищенных операций
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient подменяет HTTP клиент
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client клиент API бронирований
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient создает новый экземпляр клиента
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAvailability получает свободные слоты. durationMinutes <= 0 означает длительность мастера по умолчанию.
func (c *Client) GetAvailability(ctx context.Context, providerID int64, date time.Time, durationMinutes int) (*Availability, error) {
	var availability Availability
	path := fmt.Sprintf("/api/v1/providers/%d/availability", providerID)
	if err := c.do(ctx, http.MethodGet, path, dayQuery(date, durationMinutes), nil, &availability); err != nil {
		return nil, err
	}
	return &availability, nil
}

// GetConflicts получает карту конфликтов на дату
func (c *Client) GetConflicts(ctx context.Context, providerID int64, date time.Time, durationMinutes int) (*Conflicts, error) {
	var conflicts Conflicts
	path := fmt.Sprintf("/api/v1/providers/%d/conflicts", providerID)
	if err := c.do(ctx, http.MethodGet, path, dayQuery(date, durationMinutes), nil, &conflicts); err != nil {
		return nil, err
	}
	return &conflicts, nil
}

// CreateBooking создает бронирование. Конфликт возвращается как *ConflictError,
// отказ в авторизации как *UnauthenticatedError с исходным запросом.
func (c *Client) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*Booking, error) {
	var booking Booking
	if err := c.do(ctx, http.MethodPost, "/api/v1/bookings", nil, req, &booking); err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			pending := *req
			return nil, &UnauthenticatedError{Request: &pending}
		}
		return nil, err
	}
	return &booking, nil
}

func dayQuery(date time.Time, durationMinutes int) url.Values {
	query := url.Values{}
	query.Set("date", date.Format(dateFormat))
	if durationMinutes > 0 {
		query.Set("durationMinutes", strconv.Itoa(durationMinutes))
	}
	return query
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dst interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	var body errorResponse
	_ = json.Unmarshal(raw, &body)

	switch resp.StatusCode {
	case http.StatusConflict:
		if body.Reason == "" {
			return fmt.Errorf("%w: conflict without reason: %s", ErrInvalidResponse, string(raw))
		}
		return &ConflictError{Reason: body.Reason, Message: body.Error}
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, body.Error)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrValidation, body.Error)
	case http.StatusServiceUnavailable, http.StatusTooManyRequests, http.StatusBadGateway, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, body.Error)
	default:
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}
}
