package core

import (
	"context"
	"errors"

	"clinic-receptionist/pkg"
)

// Agent names a routing decision can target.
const (
	AgentGeneric     = "generic_query_handler"
	AgentAppointment = "appointment_manager"
)

// Slot-collector actions.
const (
	ActionCollectInfo       = "collect_info"
	ActionCheckClient       = "check_client"
	ActionCheckAppointments = "check_appointments"
	ActionCreateClient      = "create_client"
	ActionCreateAppointment = "create_appointment"
	ActionProvideInfo       = "provide_info"
)

// Functions a collector decision may ask the orchestrator to execute.
const (
	FuncCheckClientExists     = "check_client_exists"
	FuncGetClientAppointments = "get_client_appointments"
	FuncCreateClient          = "create_client"
	FuncCreateAppointment     = "create_appointment"
)

// Failure kinds for decisions that came back unparseable. Both are fully
// absorbed at the Receptionist boundary and converted into clarifying
// prompts.
var (
	ErrClassification = errors.New("unparseable routing decision")
	ErrExtraction     = errors.New("unparseable extraction result")
)

// RouteDecision is the intent classifier's output.
type RouteDecision struct {
	TargetAgent string `json:"target_agent"`
	Reason      string `json:"reason"`
	UserIntent  string `json:"user_intent"`
}

// NameExtraction is the name extractor's output. Multi-token surnames are
// folded entirely into LastName by the prompt contract.
type NameExtraction struct {
	HasName   bool   `json:"has_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FunctionCall is a side effect the slot collector asks the orchestrator
// to execute.
type FunctionCall struct {
	Function string         `json:"function"`
	Params   map[string]any `json:"params"`
}

// CollectorResult is the slot collector's output for one turn.
// DataCollected is merged into the session state immediately; the
// function call result formats the reply only for the check_appointments
// and create_appointment actions.
type CollectorResult struct {
	Action         string         `json:"action"`
	Response       string         `json:"response"`
	DataCollected  map[string]any `json:"data_collected"`
	MissingFields  []string       `json:"missing_fields"`
	ReadyToExecute bool           `json:"ready_to_execute"`
	FunctionCall   *FunctionCall  `json:"function_call"`
}

// genericReply is the simple responder's output.
type genericReply struct {
	Response string `json:"response"`
	Action   string `json:"action"`
}

// Repository is the persistence capability the orchestrator consumes.
// Implemented by db.Repository; tests substitute an in-memory fake.
type Repository interface {
	FindClientByName(ctx context.Context, firstName, lastName string) (*pkg.Client, error)
	CreateClient(ctx context.Context, c *pkg.Client) (*pkg.Client, error)
	CreateAppointment(ctx context.Context, a *pkg.Appointment) (*pkg.Appointment, error)
	ListAppointments(ctx context.Context, clientID int64) ([]pkg.Appointment, error)
}

// LinkCreator builds a shareable calendar link for a booked appointment.
// Link failures are non-fatal: the booking stands and the confirmation
// simply omits the link.
type LinkCreator interface {
	EventLink(title, date, timeOfDay string, durationMinutes int, details, location string) (string, error)
}
