package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clinic-receptionist/internal/llm"
	"clinic-receptionist/pkg"
	logx "clinic-receptionist/pkg/logger"
)

// Config carries the clinic-specific knobs the Receptionist needs.
type Config struct {
	// Location is the clinic's timezone, used for the session date/time
	// snapshot and for calendar link construction.
	Location *time.Location
	// ClinicLocation is the human-readable venue placed on calendar events.
	ClinicLocation string
}

// Receptionist is the workflow orchestrator. It sequences intent
// classification, name extraction and slot collection for each turn,
// decides when enough state exists to execute a persistence side effect,
// and formats the user-facing reply. One utterance is fully resolved
// before the next is accepted; the caller must not interleave turns on
// the same state.
type Receptionist struct {
	llm      llm.Client
	repo     Repository
	links    LinkCreator
	loc      *time.Location
	location string
}

// NewReceptionist wires the orchestrator's collaborators.
func NewReceptionist(client llm.Client, repo Repository, links LinkCreator, cfg Config) *Receptionist {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	location := cfg.ClinicLocation
	if location == "" {
		location = "Dental Clinic"
	}
	return &Receptionist{
		llm:      client,
		repo:     repo,
		links:    links,
		loc:      loc,
		location: location,
	}
}

// NewSession returns a fresh conversation state with the date/time
// snapshot taken in the clinic's timezone.
func (r *Receptionist) NewSession() *ConversationState {
	return NewConversationState(time.Now().In(r.loc))
}

// Reset discards the conversation and reinitializes the state in place.
func (r *Receptionist) Reset(st *ConversationState) {
	st.Reset(time.Now().In(r.loc))
	logx.Info().Msg("conversation state reset")
}

// Respond is the top-level entry point for one turn. No error ever
// escapes it: classification and extraction failures become clarifying
// prompts, persistence failures become retry messages, and anything
// unexpected is converted into a generic apology.
func (r *Receptionist) Respond(ctx context.Context, st *ConversationState, utterance string) (reply string) {
	defer func() {
		if rec := recover(); rec != nil {
			logx.Error().Any("panic", rec).Msg("recovered in Respond")
			reply = replyApology
		}
	}()

	logx.Debug().
		Str("stage", string(st.Stage)).
		Bool("client_checked", st.ClientChecked).
		Msg("processing utterance")

	route, err := r.route(ctx, st, utterance)
	if err != nil {
		logx.Warn().Err(err).Msg("routing failed")
		return replyRephrase
	}

	switch route.TargetAgent {
	case AgentGeneric:
		return r.generalTurn(ctx, st, utterance)
	case AgentAppointment:
		return r.appointmentTurn(ctx, st, utterance)
	default:
		return replyClarify
	}
}

// route asks the intent classifier where this utterance should go.
func (r *Receptionist) route(ctx context.Context, st *ConversationState, utterance string) (*RouteDecision, error) {
	out, err := r.llm.Complete(ctx, renderRouterPrompt(utterance, st.Snapshot()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	var decision RouteDecision
	if err := llm.ParseJSON(out, &decision); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	if decision.TargetAgent == "" {
		return nil, ErrClassification
	}
	logx.Debug().Str("target", decision.TargetAgent).Str("intent", decision.UserIntent).Msg("routed")
	return &decision, nil
}

// generalTurn produces a direct reply for non-appointment queries. It
// never mutates state.
func (r *Receptionist) generalTurn(ctx context.Context, st *ConversationState, utterance string) string {
	out, err := r.llm.Complete(ctx, renderGenericPrompt(utterance, st.Snapshot()))
	if err != nil {
		return replyGenericFallback
	}
	var reply genericReply
	if err := llm.ParseJSON(out, &reply); err != nil || reply.Response == "" {
		return replyGenericFallback
	}
	return reply.Response
}

// appointmentTurn drives the booking state machine: establish a name,
// perform the one-time existence lookup, then delegate to the existing-
// or new-client sub-flow.
func (r *Receptionist) appointmentTurn(ctx context.Context, st *ConversationState, utterance string) string {
	if !st.HasCompleteName() {
		ext, err := r.extractName(ctx, utterance)
		if err != nil || !ext.HasName {
			return replyAskName
		}
		st.MergeUpdates(map[string]any{
			"first_name": ext.FirstName,
			"last_name":  ext.LastName,
		})
		logx.Debug().Str("first", st.FirstName).Str("last", st.LastName).Msg("extracted name")
		// The existence check happens in the same turn the name becomes
		// known, not on the next user message.
		return r.checkAndRouteClient(ctx, st)
	}

	if !st.ClientChecked {
		return r.checkAndRouteClient(ctx, st)
	}

	if st.ClientID != nil || st.Stage == StageExistingClient {
		return r.existingClientTurn(ctx, st, utterance)
	}
	return r.newClientTurn(ctx, st, utterance)
}

// extractName asks the name extractor for a first/last name pair.
func (r *Receptionist) extractName(ctx context.Context, utterance string) (*NameExtraction, error) {
	out, err := r.llm.Complete(ctx, renderNameExtractionPrompt(utterance))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	var ext NameExtraction
	if err := llm.ParseJSON(out, &ext); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return &ext, nil
}

// checkAndRouteClient performs the single existence lookup for the
// current name and transitions into the matching sub-flow. ClientChecked
// flips to true unconditionally, even when the lookup itself fails, so a
// transient persistence error cannot cause a retry loop.
func (r *Receptionist) checkAndRouteClient(ctx context.Context, st *ConversationState) string {
	client, err := r.repo.FindClientByName(ctx, st.FirstName, st.LastName)
	st.ClientChecked = true
	if err != nil {
		logx.Error().Err(err).Msg("client lookup failed")
		return replyLookupTrouble
	}

	if client != nil {
		st.ClientID = &client.ClientID
		st.MergeUpdates(map[string]any{
			"first_name": client.FirstName,
			"last_name":  client.LastName,
			"email":      client.Email,
			"phone_no":   client.PhoneNo,
			"age":        client.Age,
			"gender":     client.Gender,
		})
		st.Stage = StageExistingClient
		return fmt.Sprintf(
			"Welcome back, %s %s! How can I help you today? Would you like to book an appointment or check your existing appointments?",
			st.FirstName, st.LastName)
	}

	st.Stage = StageNewClientCollecting
	return fmt.Sprintf(
		"Nice to meet you, %s %s! I'll need a few details to create your profile. Could you please provide your phone number?",
		st.FirstName, st.LastName)
}

// existingClientTurn delegates to the slot collector on behalf of a known
// client. A requested function call is executed, but its result formats
// the reply only for the check_appointments and create_appointment
// actions; every other action answers with the collector's response text.
func (r *Receptionist) existingClientTurn(ctx context.Context, st *ConversationState, utterance string) string {
	res, err := r.collect(ctx, st, utterance)
	if err != nil {
		logx.Warn().Err(err).Msg("slot collection failed")
		return replyExistingFallback
	}

	st.MergeUpdates(res.DataCollected)

	if res.FunctionCall != nil {
		switch res.Action {
		case ActionCheckAppointments:
			return r.listAppointments(ctx, st, res.FunctionCall.Params)
		case ActionCreateAppointment:
			return r.bookAppointment(ctx, st, res.FunctionCall.Params)
		default:
			// Executed for its side effect only; the reply stays the
			// collector's response text.
			r.executeFunction(ctx, st, res.FunctionCall)
		}
	}

	if res.Response == "" {
		return replyExistingFallback
	}
	return res.Response
}

// newClientTurn collects profile fields for a client not yet in the
// directory. The client-create side effect fires from the authoritative
// merged state, never from the collector's params, the instant the
// profile is complete.
func (r *Receptionist) newClientTurn(ctx context.Context, st *ConversationState, utterance string) string {
	res, err := r.collect(ctx, st, utterance)
	if err != nil {
		logx.Warn().Err(err).Msg("slot collection failed")
		return replyNeedMore
	}

	st.MergeUpdates(res.DataCollected)

	if st.HasCompleteClientInfo() && st.ClientID == nil {
		created, err := r.repo.CreateClient(ctx, &pkg.Client{
			FirstName: st.FirstName,
			LastName:  st.LastName,
			Email:     st.Email,
			PhoneNo:   st.PhoneNo,
			Age:       st.Age,
			Gender:    st.Gender,
		})
		if err != nil {
			logx.Error().Err(err).Msg("client create failed")
			return replyProfileTrouble
		}
		st.ClientID = &created.ClientID
		st.Stage = StageExistingClient
		return fmt.Sprintf(
			"Great! I've created your profile, %s. Now, let's book your appointment. What is the reason for your visit?",
			st.FirstName)
	}

	if st.ClientID != nil && st.HasCompleteAppointmentInfo() {
		return r.bookAppointment(ctx, st, nil)
	}

	if res.Response == "" {
		return replyNeedMore
	}
	return res.Response
}

// collect runs the slot collector for one utterance.
func (r *Receptionist) collect(ctx context.Context, st *ConversationState, utterance string) (*CollectorResult, error) {
	out, err := r.llm.Complete(ctx, renderCollectorPrompt(utterance, st.Snapshot(), st.CurrentDate))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	var res CollectorResult
	if err := llm.ParseJSON(out, &res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return &res, nil
}

// executeFunction runs a collector-requested side effect whose result is
// not needed for reply formatting.
func (r *Receptionist) executeFunction(ctx context.Context, st *ConversationState, call *FunctionCall) {
	switch call.Function {
	case FuncCheckClientExists:
		first, _ := call.Params["first_name"].(string)
		last, _ := call.Params["last_name"].(string)
		if _, err := r.repo.FindClientByName(ctx, first, last); err != nil {
			logx.Warn().Err(err).Msg("check_client_exists failed")
		}
	case FuncGetClientAppointments:
		if id := r.resolveClientID(st, call.Params); id != 0 {
			if _, err := r.repo.ListAppointments(ctx, id); err != nil {
				logx.Warn().Err(err).Msg("get_client_appointments failed")
			}
		}
	default:
		logx.Warn().Str("function", call.Function).Msg("unknown function call ignored")
	}
}

// listAppointments fetches and formats the client's recent appointments.
func (r *Receptionist) listAppointments(ctx context.Context, st *ConversationState, params map[string]any) string {
	id := r.resolveClientID(st, params)
	if id == 0 {
		return replyListTrouble
	}
	appts, err := r.repo.ListAppointments(ctx, id)
	if err != nil {
		logx.Error().Err(err).Msg("appointment list failed")
		return replyListTrouble
	}
	if len(appts) == 0 {
		return fmt.Sprintf("You don't have any appointments scheduled, %s. Would you like to book one?", st.FirstName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are your appointments, %s:\n\n", st.FirstName)
	for _, apt := range appts {
		fmt.Fprintf(&b, "• %s at %s - %s (%s)\n", apt.Date, apt.Time, apt.Reason, apt.Status)
	}
	b.WriteString("\nWould you like to book another appointment?")
	return b.String()
}

// bookAppointment executes the appointment-create side effect. Collector
// params, when present, are backfilled from the authoritative merged
// state so a booking can never reference fields the session does not
// hold. On success the appointment-in-progress fields are cleared; the
// client identity is retained for follow-up turns.
func (r *Receptionist) bookAppointment(ctx context.Context, st *ConversationState, params map[string]any) string {
	clientID := r.resolveClientID(st, params)
	date := stringParam(params, "appointment_date", st.AppointmentDate)
	timeOfDay := stringParam(params, "appointment_time", st.AppointmentTime)
	reason := stringParam(params, "reason", st.AppointmentReason)

	if clientID == 0 || date == "" || timeOfDay == "" || reason == "" {
		return replyNeedMore
	}

	if _, err := r.repo.CreateAppointment(ctx, &pkg.Appointment{
		ClientID: clientID,
		Date:     date,
		Time:     timeOfDay,
		Reason:   reason,
		Status:   pkg.StatusScheduled,
	}); err != nil {
		logx.Error().Err(err).Msg("appointment create failed")
		return replyBookingTrouble
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Perfect! Your appointment is confirmed for %s at %s for %s.", date, timeOfDay, reason)

	if r.links != nil {
		link, err := r.links.EventLink(
			"Dental Appointment - "+reason,
			date, timeOfDay, 30,
			fmt.Sprintf("Appointment for %s %s", st.FirstName, st.LastName),
			r.location,
		)
		if err != nil {
			// Non-fatal: the booking stands without a link.
			logx.Warn().Err(err).Msg("calendar link creation failed")
		} else if link != "" {
			fmt.Fprintf(&b, "\n\nAdd to your calendar: %s", link)
		}
	}

	b.WriteString("\n\nIs there anything else I can help you with?")

	st.AppointmentDate = ""
	st.AppointmentTime = ""
	st.AppointmentReason = ""

	return b.String()
}

// resolveClientID prefers an explicit param but falls back to the session.
func (r *Receptionist) resolveClientID(st *ConversationState, params map[string]any) int64 {
	if params != nil {
		if id, ok := asInt64(params["client_id"]); ok && id > 0 {
			return id
		}
	}
	if st.ClientID != nil {
		return *st.ClientID
	}
	return 0
}

func stringParam(params map[string]any, key, fallback string) string {
	if params != nil {
		if v, ok := params[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return fallback
}
