package core

import (
	"strconv"
	"strings"
	"time"
)

// Stage is the coarse position of a conversation in the booking flow.
type Stage string

const (
	StageInitial             Stage = "initial"
	StageNewClientCollecting Stage = "new_client_collecting_info"
	StageExistingClient      Stage = "existing_client"
)

// ConversationState is the mutable per-conversation record of collected
// fields, stage and flags. It is owned exclusively by the Receptionist
// for the duration of a turn and is JSON-serializable so a session store
// can persist it between turns.
//
// Text fields use the empty string as "not yet collected"; Age uses zero.
// ClientID is a pointer because it is genuinely nullable: non-nil exactly
// when a persistence create succeeded or an existing-client lookup
// matched.
type ConversationState struct {
	ClientID  *int64 `json:"client_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	PhoneNo   string `json:"phone_no"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`

	AppointmentDate   string `json:"appointment_date"`
	AppointmentTime   string `json:"appointment_time"`
	AppointmentReason string `json:"appointment_reason"`

	Stage         Stage `json:"conversation_stage"`
	ClientChecked bool  `json:"client_checked"`

	// Snapshot of "now" at session start, used only to ground prompts.
	CurrentDate string `json:"current_date"`
	CurrentTime string `json:"current_time"`
}

// NewConversationState returns a fresh state with the date/time snapshot
// taken from now.
func NewConversationState(now time.Time) *ConversationState {
	return &ConversationState{
		Stage:       StageInitial,
		CurrentDate: now.Format("2006-01-02"),
		CurrentTime: now.Format("15:04"),
	}
}

// Reset discards all collected fields and reinitializes the stage, flags
// and the date/time snapshot.
func (s *ConversationState) Reset(now time.Time) {
	*s = *NewConversationState(now)
}

// Snapshot returns the state as a map suitable for inclusion in a prompt.
// Uncollected fields appear as explicit nulls so the model can see what
// is still missing.
func (s *ConversationState) Snapshot() map[string]any {
	snap := map[string]any{
		"client_id":          nil,
		"first_name":         nullable(s.FirstName),
		"last_name":          nullable(s.LastName),
		"email":              s.Email,
		"phone_no":           nullable(s.PhoneNo),
		"age":                nil,
		"gender":             nullable(s.Gender),
		"appointment_date":   nullable(s.AppointmentDate),
		"appointment_time":   nullable(s.AppointmentTime),
		"appointment_reason": nullable(s.AppointmentReason),
		"conversation_stage": string(s.Stage),
		"client_checked":     s.ClientChecked,
		"current_date":       s.CurrentDate,
		"current_time":       s.CurrentTime,
	}
	if s.ClientID != nil {
		snap["client_id"] = *s.ClientID
	}
	if s.Age != 0 {
		snap["age"] = s.Age
	}
	return snap
}

// MergeUpdates applies extracted field updates additively: a non-null
// incoming value overwrites, a null or absent value never clears what is
// already held. Numeric values arriving as JSON numbers or digit strings
// are coerced.
func (s *ConversationState) MergeUpdates(fields map[string]any) {
	for key, raw := range fields {
		switch key {
		case "client_id":
			if id, ok := asInt64(raw); ok && id > 0 {
				s.ClientID = &id
			}
		case "first_name":
			setString(&s.FirstName, raw)
		case "last_name":
			setString(&s.LastName, raw)
		case "email":
			setString(&s.Email, raw)
		case "phone_no":
			setString(&s.PhoneNo, raw)
		case "age":
			if n, ok := asInt64(raw); ok && n > 0 && n <= 120 {
				s.Age = int(n)
			}
		case "gender":
			setString(&s.Gender, raw)
		case "appointment_date":
			setString(&s.AppointmentDate, raw)
		case "appointment_time":
			setString(&s.AppointmentTime, raw)
		case "appointment_reason", "reason":
			setString(&s.AppointmentReason, raw)
		}
	}
}

// HasCompleteName reports whether both first and last name are held.
func (s *ConversationState) HasCompleteName() bool {
	return s.FirstName != "" && s.LastName != ""
}

// HasCompleteClientInfo reports whether every field required to create a
// client profile is held. Email is optional.
func (s *ConversationState) HasCompleteClientInfo() bool {
	return s.FirstName != "" &&
		s.LastName != "" &&
		s.PhoneNo != "" &&
		s.Age != 0 &&
		s.Gender != ""
}

// HasCompleteAppointmentInfo reports whether date, time and reason for
// the appointment in progress are all held.
func (s *ConversationState) HasCompleteAppointmentInfo() bool {
	return s.AppointmentDate != "" &&
		s.AppointmentTime != "" &&
		s.AppointmentReason != ""
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func setString(dst *string, raw any) {
	v, ok := raw.(string)
	if !ok {
		return
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	*dst = v
}

func asInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		// JSON numbers decode as float64.
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
