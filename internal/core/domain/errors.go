package domain

import (
	"errors"
	"fmt"

	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
)

var (
	// ErrStoreUnavailable сбой сети или бэкенда, исходная ошибка оборачивается
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrAuthenticationMissing нет действующей сессии, клиент должен заново войти
	ErrAuthenticationMissing = errors.New("authentication missing")
	// ErrSlotConflict хранилище отказало в условной вставке: слот уже занят
	ErrSlotConflict = errors.New("slot conflict")
	ErrNotFound     = errors.New("not found")
)

// ConfigurationError некорректное правило доступности
type ConfigurationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid availability rule: %s: %s", e.Field, e.Message)
}

type RejectionReason string

const (
	ReasonSlotNotOffered    RejectionReason = "slot_not_offered"
	ReasonSlotAlreadyBooked RejectionReason = "slot_already_booked"
	ReasonDateInPast        RejectionReason = "date_in_past"
	ReasonInvalidSeverity   RejectionReason = "invalid_severity"
	ReasonNotEditable       RejectionReason = "not_editable"
	ReasonInvalidTransition RejectionReason = "invalid_transition"
	ReasonNotOwner          RejectionReason = "not_owner"
)

var rejectionMessages = map[RejectionReason]string{
	ReasonSlotNotOffered:    "The doctor does not offer this time on the selected date.",
	ReasonSlotAlreadyBooked: "This time slot has already been booked. Please choose another one.",
	ReasonDateInPast:        "Appointments cannot be booked in the past.",
	ReasonInvalidSeverity:   "Severity must be mild, moderate or severe.",
	ReasonNotEditable:       "Only pending appointments can be changed.",
	ReasonInvalidTransition: "This status change is not allowed.",
	ReasonNotOwner:          "This appointment belongs to another user.",
}

// Message человекочитаемое сообщение для клиента
func (r RejectionReason) Message() string {
	if msg, ok := rejectionMessages[r]; ok {
		return msg
	}
	return string(r)
}

// Rejection типизированный отказ валидации. Никогда не означает сбой хранилища
type Rejection struct {
	Reason RejectionReason `json:"reason"`
	// AppointmentID конфликтующая или редактируемая запись, если есть
	AppointmentID json_types.ID `json:"appointment,omitempty"`
}

func Reject(reason RejectionReason) *Rejection {
	return &Rejection{Reason: reason}
}

func (r *Rejection) WithAppointment(id json_types.ID) *Rejection {
	r.AppointmentID = id
	return r
}

func (r *Rejection) Error() string {
	if r.AppointmentID.IsEmpty() {
		return fmt.Sprintf("rejected: %s", r.Reason)
	}
	return fmt.Sprintf("rejected: %s (appointment %s)", r.Reason, r.AppointmentID)
}

// IsRejected проверяет, что err это отказ с указанной причиной
func IsRejected(err error, reason RejectionReason) bool {
	var rejection *Rejection
	return errors.As(err, &rejection) && rejection.Reason == reason
}
