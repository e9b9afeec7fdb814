package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"strings"

	"github.com/suchimauz/clinic-scheduling-engine/internal/config"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

// BackendAdapter REST-клиент бэкенда клиники. Токен каждого запроса берется
// из контекста вызова
type BackendAdapter struct {
	client  *http.Client
	baseURL string
	logger  out.LoggerPort
}

func NewBackendAdapter(cfg *config.Config, logger out.LoggerPort) *BackendAdapter {
	return &BackendAdapter{
		client:  &http.Client{Timeout: cfg.Backend.Timeout},
		baseURL: strings.TrimRight(cfg.Backend.URL, "/"),
		logger:  logger.WithModule("BackendAdapter"),
	}
}

// Правила доступности

func (a *BackendAdapter) ListRules(ctx context.Context, doctorID json_types.ID) ([]domain.AvailabilityRule, error) {
	query := nurl.Values{}
	if !doctorID.IsEmpty() {
		query.Set("doctor", doctorID.String())
	}

	var rules []domain.AvailabilityRule
	if err := a.getList(ctx, "availability.list", "/doctor-availabilities/", query, &rules); err != nil {
		return nil, err
	}

	// Бэкенд может игнорировать фильтр и вернуть правила всех врачей
	if doctorID.IsEmpty() {
		return rules, nil
	}
	filtered := make([]domain.AvailabilityRule, 0, len(rules))
	for _, rule := range rules {
		if rule.DoctorID == doctorID {
			filtered = append(filtered, rule)
		}
	}
	return filtered, nil
}

func (a *BackendAdapter) CreateRule(ctx context.Context, rule domain.AvailabilityRule) (*domain.AvailabilityRule, error) {
	var created domain.AvailabilityRule
	if err := a.do(ctx, "availability.create", http.MethodPost, "/doctor-availabilities/", nil, rule, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (a *BackendAdapter) DeleteRule(ctx context.Context, ruleID json_types.ID) error {
	path := fmt.Sprintf("/doctor-availabilities/%s/", nurl.PathEscape(ruleID.String()))
	return a.do(ctx, "availability.delete", http.MethodDelete, path, nil, nil, nil)
}

// Записи на прием

func (a *BackendAdapter) ListAppointments(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	query := nurl.Values{}
	if !filter.DoctorID.IsEmpty() {
		query.Set("doctor", filter.DoctorID.String())
	}
	if !filter.PatientID.IsEmpty() {
		query.Set("patient", filter.PatientID.String())
	}
	if filter.Date != nil {
		query.Set("date", filter.Date.String())
	}

	var appointments []domain.Appointment
	if err := a.getList(ctx, "appointment.list", "/appointments/", query, &appointments); err != nil {
		return nil, err
	}

	filtered := make([]domain.Appointment, 0, len(appointments))
	for _, appointment := range appointments {
		if filter.Matches(appointment) {
			filtered = append(filtered, appointment)
		}
	}
	return filtered, nil
}

func (a *BackendAdapter) GetAppointment(ctx context.Context, appointmentID json_types.ID) (*domain.Appointment, error) {
	var appointment domain.Appointment
	if err := a.do(ctx, "appointment.get", http.MethodGet, appointmentPath(appointmentID), nil, nil, &appointment); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (a *BackendAdapter) CreateAppointment(ctx context.Context, appointment domain.Appointment) (*domain.Appointment, error) {
	var created domain.Appointment
	if err := a.do(ctx, "appointment.create", http.MethodPost, "/appointments/", nil, appointment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (a *BackendAdapter) UpdateAppointmentStatus(ctx context.Context, appointmentID json_types.ID, status domain.AppointmentStatus) (*domain.Appointment, error) {
	body := map[string]domain.AppointmentStatus{"status": status}

	var updated domain.Appointment
	if err := a.do(ctx, "appointment.update_status", http.MethodPatch, appointmentPath(appointmentID), nil, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (a *BackendAdapter) UpdateAppointmentFields(ctx context.Context, appointmentID json_types.ID, fields domain.AppointmentFields) (*domain.Appointment, error) {
	var updated domain.Appointment
	if err := a.do(ctx, "appointment.update_fields", http.MethodPatch, appointmentPath(appointmentID), nil, fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func appointmentPath(id json_types.ID) string {
	return fmt.Sprintf("/appointments/%s/", nurl.PathEscape(id.String()))
}

// getList поддерживает и голый массив, и страницу вида {"results": [...]}
func (a *BackendAdapter) getList(ctx context.Context, op, path string, query nurl.Values, result interface{}) error {
	var raw json.RawMessage
	if err := a.do(ctx, op, http.MethodGet, path, query, nil, &raw); err != nil {
		return err
	}

	payload := bytes.TrimSpace(raw)
	if len(payload) > 0 && payload[0] == '{' {
		var page struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(payload, &page); err != nil {
			return a.decodeFailed(op, err)
		}
		payload = page.Results
	}
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		payload = []byte("[]")
	}

	if err := json.Unmarshal(payload, result); err != nil {
		return a.decodeFailed(op, err)
	}
	return nil
}

func (a *BackendAdapter) do(ctx context.Context, op, method, path string, query nurl.Values, body, result interface{}) error {
	cred, ok := domain.CredentialFrom(ctx)
	if !ok {
		a.logger.Warn("backend."+op+".no_credential", out.LogFields{})
		return domain.ErrAuthenticationMissing
	}

	url := a.baseURL + path
	if len(query) > 0 {
		url += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend.%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		a.logger.Error("backend."+op+".request_failed", out.LogFields{
			"error": err.Error(),
		})
		return fmt.Errorf("backend.%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("backend."+op+".fetch_failed", out.LogFields{
			"url":   url,
			"error": err.Error(),
		})
		return fmt.Errorf("backend.%s: %w: %v", op, domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backend.%s: %w: read body: %v", op, domain.ErrStoreUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.logger.Error("backend."+op+".unexpected_status", out.LogFields{
			"url":    url,
			"status": resp.StatusCode,
		})
		return statusError(op, resp.StatusCode, respBody)
	}

	a.logger.Debug("backend."+op+".success", out.LogFields{
		"url":    url,
		"status": resp.StatusCode,
	})

	if result == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return a.decodeFailed(op, err)
	}
	return nil
}

func (a *BackendAdapter) decodeFailed(op string, err error) error {
	a.logger.Error("backend."+op+".decode_failed", out.LogFields{
		"error": err.Error(),
	})
	return fmt.Errorf("backend.%s: %w: decode response: %v", op, domain.ErrStoreUnavailable, err)
}

// statusError переводит код ответа бэкенда в ошибки домена
func statusError(op string, status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("backend.%s: status %d: %w", op, status, domain.ErrAuthenticationMissing)
	case status == http.StatusNotFound:
		return fmt.Errorf("backend.%s: %w", op, domain.ErrNotFound)
	case status == http.StatusConflict:
		return fmt.Errorf("backend.%s: %w", op, domain.ErrSlotConflict)
	case status == http.StatusBadRequest && isUniquenessViolation(body):
		return fmt.Errorf("backend.%s: %w", op, domain.ErrSlotConflict)
	}
	return fmt.Errorf("backend.%s: %w: status %d: %s", op, domain.ErrStoreUnavailable, status, truncate(body, 200))
}

// isUniquenessViolation ответ валидатора уникальности вида
// {"non_field_errors": ["The fields doctor, date, time must make a unique set."]}
func isUniquenessViolation(body []byte) bool {
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "unique") || strings.Contains(lower, "already booked")
}

func truncate(body []byte, n int) string {
	if len(body) > n {
		return string(body[:n])
	}
	return string(body)
}
