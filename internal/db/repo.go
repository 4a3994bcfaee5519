package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"clinic-receptionist/pkg"
)

// Repository wraps database operations for clients and appointments.
// All statements are parameterized; values are never interpolated into
// SQL text.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a Repository from an existing sql.DB. The
// caller manages the connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// FindClientByName returns the client whose first and last name match the
// given values after trimming and case folding, or nil when no client
// matches. Duplicate names are not disambiguated; rows are ordered by
// client_id so the oldest profile wins.
func (r *Repository) FindClientByName(ctx context.Context, firstName, lastName string) (*pkg.Client, error) {
	var c pkg.Client
	err := r.DB.QueryRowContext(ctx,
		`SELECT client_id, first_name, last_name, email, phone_no, age, gender, created_at
         FROM clients
         WHERE LOWER(TRIM(first_name)) = LOWER(TRIM($1))
           AND LOWER(TRIM(last_name)) = LOWER(TRIM($2))
         ORDER BY client_id
         LIMIT 1`,
		firstName, lastName,
	).Scan(&c.ClientID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNo, &c.Age, &c.Gender, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find client by name: %w", err)
	}
	return &c, nil
}

// CreateClient inserts a new client and returns the stored row. Gender is
// capitalized before storage and email defaults to the empty string. The
// assigned client_id is obtained by looking the row up again by name
// rather than relying on driver support for generated keys.
func (r *Repository) CreateClient(ctx context.Context, c *pkg.Client) (*pkg.Client, error) {
	if c.FirstName == "" || c.LastName == "" || c.PhoneNo == "" || c.Age == 0 || c.Gender == "" {
		return nil, errors.New("create client: missing required fields")
	}

	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO clients (first_name, last_name, email, phone_no, age, gender, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		c.FirstName, c.LastName, c.Email, c.PhoneNo, c.Age, capitalize(c.Gender),
	)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	created, err := r.FindClientByName(ctx, c.FirstName, c.LastName)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, errors.New("create client: row not visible after insert")
	}
	return created, nil
}

// CreateAppointment inserts a new appointment for an existing client.
// Status defaults to Scheduled when unset.
func (r *Repository) CreateAppointment(ctx context.Context, a *pkg.Appointment) (*pkg.Appointment, error) {
	if a.ClientID == 0 || a.Date == "" || a.Time == "" || a.Reason == "" {
		return nil, errors.New("create appointment: missing required fields")
	}
	if a.Status == "" {
		a.Status = pkg.StatusScheduled
	}

	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO appointments (client_id, appointment_date, appointment_time, reason, status, created_at)
         VALUES ($1, $2::date, $3::time, $4, $5, NOW())`,
		a.ClientID, a.Date, a.Time, a.Reason, a.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return a, nil
}

// ListAppointments returns up to the 10 most recent appointments for a
// client, ordered by date then time descending. An empty slice is a
// valid, non-error result.
func (r *Repository) ListAppointments(ctx context.Context, clientID int64) ([]pkg.Appointment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT appointment_id, client_id,
                to_char(appointment_date, 'YYYY-MM-DD'),
                to_char(appointment_time, 'HH24:MI'),
                reason, status, created_at
         FROM appointments
         WHERE client_id = $1
         ORDER BY appointment_date DESC, appointment_time DESC
         LIMIT 10`,
		clientID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	appts := []pkg.Appointment{}
	for rows.Next() {
		var a pkg.Appointment
		if err := rows.Scan(&a.AppointmentID, &a.ClientID, &a.Date, &a.Time, &a.Reason, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("list appointments: %w", err)
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

// capitalize upper-cases the first rune and lower-cases the rest, so
// "female" and "FEMALE" both store as "Female".
func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
