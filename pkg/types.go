package pkg

import "time"

// Client is a persisted clinic client. First and last name, phone number,
// age and gender are required; email may be empty.
type Client struct {
	ClientID  int64     `json:"client_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	PhoneNo   string    `json:"phone_no"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	CreatedAt time.Time `json:"created_at"`
}

// AppointmentStatus is the lifecycle state of a booked appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "Scheduled"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// Appointment is a persisted booking. Date is a calendar date in
// YYYY-MM-DD form and Time a time of day in HH:MM form; both are stored
// as native SQL date/time columns and rendered back to these strings.
type Appointment struct {
	AppointmentID int64             `json:"appointment_id"`
	ClientID      int64             `json:"client_id"`
	Date          string            `json:"appointment_date"`
	Time          string            `json:"appointment_time"`
	Reason        string            `json:"reason"`
	Status        AppointmentStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ChatRequest is the body of a message posted to a session.
type ChatRequest struct {
	Content string `json:"content"`
}

// ChatResponse carries the receptionist's reply for one turn.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// SessionCreated is returned when a new conversation session is opened.
type SessionCreated struct {
	SessionID string `json:"session_id"`
}

// VoiceCapture is returned when a dictation capture is stopped. Reply is
// present only when the captured text was routed through a session.
type VoiceCapture struct {
	Text  string `json:"text"`
	Reply string `json:"reply,omitempty"`
}
