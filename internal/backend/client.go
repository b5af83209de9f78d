// Package backend provides the HTTP client for the clinic REST backend.
// The backend is the single source of truth: the portal never persists
// appointment data, it only requests transitions and re-fetches.
package backend

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
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sanmarcoclinic/portal/internal/observability/metrics"
	"github.com/sanmarcoclinic/portal/pkg/logging"
)

const defaultTimeout = 20 * time.Second

var backendTracer = otel.Tracer("clinicportal.internal.backend")

// APIError is a backend rejection carrying the structured detail payload.
// The detail is shown to the user verbatim when present.
type APIError struct {
	StatusCode int    `json:"-"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend: %s (status=%d)", e.Detail, e.StatusCode)
	}
	return fmt.Sprintf("backend: http status %d", e.StatusCode)
}

// Config controls how the backend client behaves.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
	Metrics    *metrics.PortalMetrics
}

// Client issues authorized requests against the clinic backend. A single
// client is shared across sessions; the bearer token is supplied per call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.PortalMetrics
}

// New creates a configured Client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("backend: base URL is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
		metrics:    cfg.Metrics,
	}, nil
}

// Login authenticates against /auth/login/{role} and returns the minted
// backend token plus the user identity.
func (c *Client) Login(ctx context.Context, role, email, password string) (*LoginResponse, error) {
	if role != "patient" && role != "doctor" {
		return nil, fmt.Errorf("backend: unknown login role %q", role)
	}
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("backend: marshal login body: %w", err)
	}
	data, err := c.invoke(ctx, "Login", http.MethodPost, "/auth/login/"+role, nil, "", body)
	if err != nil {
		return nil, err
	}
	return decode[LoginResponse](data)
}

// ListDoctors returns the full doctor roster.
func (c *Client) ListDoctors(ctx context.Context, token string) ([]Doctor, error) {
	data, err := c.invoke(ctx, "ListDoctors", http.MethodGet, "/doctors/", nil, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeSlice[Doctor](data)
}

// AvailableSlots searches bookable slots for a specialization in [start, end].
func (c *Client) AvailableSlots(ctx context.Context, token, specializzazione, startDate, endDate string) (*SlotsResponse, error) {
	q := url.Values{}
	q.Set("specializzazione", specializzazione)
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)
	data, err := c.invoke(ctx, "AvailableSlots", http.MethodGet, "/appointments/available-slots", q, token, nil)
	if err != nil {
		return nil, err
	}
	return decode[SlotsResponse](data)
}

// CreateAppointment books a slot.
func (c *Client) CreateAppointment(ctx context.Context, token string, req BookingRequest) (*Appointment, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("backend: marshal booking: %w", err)
	}
	data, err := c.invoke(ctx, "CreateAppointment", http.MethodPost, "/appointments/", nil, token, body)
	if err != nil {
		return nil, err
	}
	return decode[Appointment](data)
}

// CancelAppointment requests a cancellation. An empty motivo is omitted from
// the query string entirely.
func (c *Client) CancelAppointment(ctx context.Context, token string, id int, motivo string) error {
	var q url.Values
	if motivo != "" {
		q = url.Values{}
		q.Set("motivo", motivo)
	}
	_, err := c.invoke(ctx, "CancelAppointment", http.MethodDelete, "/appointments/"+strconv.Itoa(id), q, token, nil)
	return err
}

// DetailedAppointments lists appointment view rows matching the filter.
func (c *Client) DetailedAppointments(ctx context.Context, token string, filter AppointmentFilter) ([]AppointmentDetailed, error) {
	q := url.Values{}
	if filter.PatientID > 0 {
		q.Set("patient_id", strconv.Itoa(filter.PatientID))
	}
	if filter.DoctorID > 0 {
		q.Set("doctor_id", strconv.Itoa(filter.DoctorID))
	}
	if filter.Data != "" {
		q.Set("data", filter.Data)
	}
	if filter.DataFrom != "" {
		q.Set("data_from", filter.DataFrom)
	}
	if filter.DataTo != "" {
		q.Set("data_to", filter.DataTo)
	}
	if filter.Stato != "" {
		q.Set("stato", filter.Stato)
	}
	data, err := c.invoke(ctx, "DetailedAppointments", http.MethodGet, "/appointments/detailed", q, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeSlice[AppointmentDetailed](data)
}

// GetAppointment fetches a single appointment by id.
func (c *Client) GetAppointment(ctx context.Context, token string, id int) (*Appointment, error) {
	data, err := c.invoke(ctx, "GetAppointment", http.MethodGet, "/appointments/"+strconv.Itoa(id), nil, token, nil)
	if err != nil {
		return nil, err
	}
	return decode[Appointment](data)
}

// SearchPatients looks up patients by name or fiscal-code fragment. An empty
// search returns the unfiltered roster.
func (c *Client) SearchPatients(ctx context.Context, token, search string) ([]Patient, error) {
	var q url.Values
	if search != "" {
		q = url.Values{}
		q.Set("search", search)
	}
	data, err := c.invoke(ctx, "SearchPatients", http.MethodGet, "/patients/", q, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeSlice[Patient](data)
}

// PatientHistory fetches a patient's past visits.
func (c *Client) PatientHistory(ctx context.Context, token string, patientID int) (*PatientHistory, error) {
	data, err := c.invoke(ctx, "PatientHistory", http.MethodGet, "/patients/"+strconv.Itoa(patientID)+"/history", nil, token, nil)
	if err != nil {
		return nil, err
	}
	return decode[PatientHistory](data)
}

// ListRooms returns the room roster.
func (c *Client) ListRooms(ctx context.Context, token string) ([]Room, error) {
	data, err := c.invoke(ctx, "ListRooms", http.MethodGet, "/rooms/", nil, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeSlice[Room](data)
}

// WaitingList returns waiting entries in the backend's order.
func (c *Client) WaitingList(ctx context.Context, token string) ([]WaitingEntry, error) {
	data, err := c.invoke(ctx, "WaitingList", http.MethodGet, "/appointments/waiting-list", nil, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeSlice[WaitingEntry](data)
}

// invoke performs a single request. Every failure is terminal for the user
// action that triggered it: there is no retry here.
func (c *Client) invoke(ctx context.Context, operation, method, path string, query url.Values, token string, body []byte) ([]byte, error) {
	ctx, span := backendTracer.Start(ctx, "backend."+operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.operation", operation),
		attribute.String("http.method", method),
	)

	start := time.Now()
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		c.metrics.ObserveBackendCall(operation, 0, time.Since(start).Seconds())
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("backend: http error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		c.metrics.ObserveBackendCall(operation, resp.StatusCode, time.Since(start).Seconds())
		return nil, fmt.Errorf("backend: read response: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.metrics.ObserveBackendCall(operation, resp.StatusCode, time.Since(start).Seconds())

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	apiErr := decodeAPIError(resp.StatusCode, data)
	c.logger.Warn("backend rejected request",
		"operation", operation,
		"status", resp.StatusCode,
		"error", apiErr,
	)
	return nil, apiErr
}

func (c *Client) buildURL(path string, query url.Values) string {
	full := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		full = full + "?" + query.Encode()
	}
	return full
}

func decodeAPIError(status int, body []byte) *APIError {
	parsed := &APIError{StatusCode: status}
	// Malformed error bodies fall back to a detail-less rejection.
	_ = json.Unmarshal(body, parsed)
	parsed.StatusCode = status
	return parsed
}

func decode[T any](body []byte) (*T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("backend: decode response: %w", err)
	}
	return &out, nil
}

func decodeSlice[T any](body []byte) ([]T, error) {
	var out []T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("backend: decode response: %w", err)
	}
	return out, nil
}
