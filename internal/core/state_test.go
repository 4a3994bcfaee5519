package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversationState(t *testing.T) {
	now := time.Date(2025, 11, 3, 14, 30, 0, 0, time.UTC)
	st := NewConversationState(now)

	assert.Equal(t, StageInitial, st.Stage)
	assert.Equal(t, "2025-11-03", st.CurrentDate)
	assert.Equal(t, "14:30", st.CurrentTime)
	assert.Nil(t, st.ClientID)
	assert.False(t, st.ClientChecked)
}

func TestMergeUpdatesOverwritesNonNull(t *testing.T) {
	st := NewConversationState(time.Now())
	st.MergeUpdates(map[string]any{
		"first_name": "Rohit",
		"last_name":  "Sharma",
		"phone_no":   "9876543210",
		"age":        float64(34), // JSON numbers decode as float64
		"gender":     "Male",
	})

	assert.Equal(t, "Rohit", st.FirstName)
	assert.Equal(t, "Sharma", st.LastName)
	assert.Equal(t, "9876543210", st.PhoneNo)
	assert.Equal(t, 34, st.Age)
	assert.Equal(t, "Male", st.Gender)

	st.MergeUpdates(map[string]any{"first_name": "Raj"})
	assert.Equal(t, "Raj", st.FirstName)
	assert.Equal(t, "Sharma", st.LastName)
}

func TestMergeUpdatesNullNeverClears(t *testing.T) {
	st := NewConversationState(time.Now())
	st.MergeUpdates(map[string]any{
		"first_name":       "Rohit",
		"phone_no":         "9876543210",
		"appointment_date": "2025-11-03",
	})

	st.MergeUpdates(map[string]any{
		"first_name":       nil,
		"phone_no":         "",
		"appointment_date": "   ",
	})

	assert.Equal(t, "Rohit", st.FirstName)
	assert.Equal(t, "9876543210", st.PhoneNo)
	assert.Equal(t, "2025-11-03", st.AppointmentDate)
}

func TestMergeUpdatesNumericCoercion(t *testing.T) {
	st := NewConversationState(time.Now())

	st.MergeUpdates(map[string]any{"age": "41", "client_id": float64(7)})
	assert.Equal(t, 41, st.Age)
	require.NotNil(t, st.ClientID)
	assert.Equal(t, int64(7), *st.ClientID)

	// Out-of-range and garbage values are dropped, not applied.
	st.MergeUpdates(map[string]any{"age": float64(800)})
	assert.Equal(t, 41, st.Age)
	st.MergeUpdates(map[string]any{"age": "not a number"})
	assert.Equal(t, 41, st.Age)
	st.MergeUpdates(map[string]any{"client_id": float64(-3)})
	assert.Equal(t, int64(7), *st.ClientID)
}

func TestMergeUpdatesReasonAlias(t *testing.T) {
	st := NewConversationState(time.Now())
	st.MergeUpdates(map[string]any{"reason": "tooth pain"})
	assert.Equal(t, "tooth pain", st.AppointmentReason)

	st.MergeUpdates(map[string]any{"appointment_reason": "cleaning"})
	assert.Equal(t, "cleaning", st.AppointmentReason)
}

func TestMergeUpdatesIgnoresUnknownKeys(t *testing.T) {
	st := NewConversationState(time.Now())
	before := *st
	st.MergeUpdates(map[string]any{"favourite_color": "blue", "notes": 42})
	assert.Equal(t, before, *st)
}

func TestReset(t *testing.T) {
	st := NewConversationState(time.Now())
	id := int64(9)
	st.ClientID = &id
	st.FirstName = "Rohit"
	st.Stage = StageExistingClient
	st.ClientChecked = true
	st.AppointmentDate = "2025-11-03"

	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	st.Reset(now)

	assert.Nil(t, st.ClientID)
	assert.Empty(t, st.FirstName)
	assert.Empty(t, st.AppointmentDate)
	assert.Equal(t, StageInitial, st.Stage)
	assert.False(t, st.ClientChecked)
	assert.Equal(t, "2026-01-15", st.CurrentDate)
}

func TestSnapshotNullsForUnset(t *testing.T) {
	st := NewConversationState(time.Now())
	st.FirstName = "Rohit"

	snap := st.Snapshot()
	assert.Equal(t, "Rohit", snap["first_name"])
	assert.Nil(t, snap["last_name"])
	assert.Nil(t, snap["client_id"])
	assert.Nil(t, snap["age"])
	assert.Equal(t, "initial", snap["conversation_stage"])
	assert.Equal(t, false, snap["client_checked"])

	id := int64(12)
	st.ClientID = &id
	st.Age = 34
	snap = st.Snapshot()
	assert.Equal(t, int64(12), snap["client_id"])
	assert.Equal(t, 34, snap["age"])
}

func TestCompletionPredicates(t *testing.T) {
	st := NewConversationState(time.Now())
	assert.False(t, st.HasCompleteName())
	assert.False(t, st.HasCompleteClientInfo())
	assert.False(t, st.HasCompleteAppointmentInfo())

	st.FirstName = "Rohit"
	assert.False(t, st.HasCompleteName())
	st.LastName = "Sharma"
	assert.True(t, st.HasCompleteName())

	st.PhoneNo = "9876543210"
	st.Age = 34
	assert.False(t, st.HasCompleteClientInfo())
	st.Gender = "Male"
	// Email is optional.
	assert.True(t, st.HasCompleteClientInfo())

	st.AppointmentDate = "2025-11-03"
	st.AppointmentTime = "14:30"
	assert.False(t, st.HasCompleteAppointmentInfo())
	st.AppointmentReason = "cleaning"
	assert.True(t, st.HasCompleteAppointmentInfo())
}
