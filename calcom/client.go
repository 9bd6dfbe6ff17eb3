// Package calcom is a client for the Cal.com v2 REST API covering the three
// operations the assistant needs: availability slots, booking creation, and
// booking listing.
package calcom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/chadn/ai-chatbot-meetings/config"
)

type Client struct {
	baseURL         string
	apiKey          string
	eventTypeID     int
	timezone        string
	language        string
	versionSlots    string
	versionBookings string
	location        *time.Location
	client          *http.Client
	log             zerolog.Logger
}

// Slot is one bookable start time as returned by the slots endpoint.
type Slot struct {
	Start string `json:"start"`
}

type Attendee struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	TimeZone string `json:"timeZone,omitempty"`
	Language string `json:"language,omitempty"`
}

type Booking struct {
	ID          int        `json:"id"`
	UID         string     `json:"uid"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Start       string     `json:"start"`
	End         string     `json:"end"`
	Status      string     `json:"status"`
	Duration    int        `json:"duration"`
	EventTypeID int        `json:"eventTypeId"`
	MeetingURL  string     `json:"meetingUrl"`
	Attendees   []Attendee `json:"attendees"`
}

// BookingRequest describes one booking to create. StartTime must be ISO-8601;
// naive local times are converted to UTC using the configured timezone.
type BookingRequest struct {
	StartTime   string
	Name        string
	Email       string
	Reason      string
	EventTypeID int
}

func New(cfg config.CalComConfig, log zerolog.Logger) (*Client, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("calcom timezone %q: %v", cfg.Timezone, err)
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("calcom base url is required")
	}
	return &Client{
		baseURL:         base,
		apiKey:          cfg.APIKey,
		eventTypeID:     cfg.EventTypeID,
		timezone:        cfg.Timezone,
		language:        cfg.Language,
		versionSlots:    cfg.APIVersionSlots,
		versionBookings: cfg.APIVersionBookings,
		location:        loc,
		client:          &http.Client{},
		log:             log.With().Str("component", "calcom").Logger(),
	}, nil
}

// Slots returns available start times between two YYYY-MM-DD dates, keyed by
// date. Both the current "data" envelope and the legacy "slots" array are
// accepted.
func (c *Client) Slots(ctx context.Context, startDate, endDate string) (map[string][]Slot, error) {
	q := url.Values{}
	q.Set("eventTypeId", strconv.Itoa(c.eventTypeID))
	q.Set("start", startDate)
	q.Set("end", endDate)
	q.Set("timeZone", c.timezone)
	body, err := c.get(ctx, "/slots?"+q.Encode(), c.versionSlots)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Data  map[string][]Slot `json:"data"`
		Slots []struct {
			Time  string `json:"time"`
			Start string `json:"start"`
		} `json:"slots"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse slots response: %v", err)
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}
	out := map[string][]Slot{}
	for _, s := range envelope.Slots {
		start := s.Start
		if start == "" {
			start = s.Time
		}
		date, _, found := strings.Cut(start, "T")
		if !found || date == "" {
			continue
		}
		out[date] = append(out[date], Slot{Start: start})
	}
	return out, nil
}

// Bookings lists scheduled bookings for an attendee email, soonest first.
func (c *Client) Bookings(ctx context.Context, email string) ([]Booking, error) {
	q := url.Values{}
	q.Set("timeZone", c.timezone)
	q.Set("attendeeEmail", email)
	q.Set("sortStart", "asc")
	body, err := c.get(ctx, "/bookings?"+q.Encode(), c.versionBookings)
	if err != nil {
		return nil, err
	}
	data, err := validateEnvelope(body, "list bookings")
	if err != nil {
		return nil, err
	}
	var bookings []Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, fmt.Errorf("parse bookings response: %v", err)
	}
	return bookings, nil
}

// CreateBooking books a meeting and returns the created booking.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error) {
	start, err := localToUTC(req.StartTime, c.location)
	if err != nil {
		return nil, fmt.Errorf("booking start time: %v", err)
	}
	eventTypeID := req.EventTypeID
	if eventTypeID == 0 {
		eventTypeID = c.eventTypeID
	}
	notes := strings.TrimSpace(req.Reason)
	if notes == "" {
		// The API rejects bookings without a notes field.
		notes = "No specific reason provided"
	}
	payload := map[string]any{
		"start":       start,
		"eventTypeId": eventTypeID,
		"attendee": Attendee{
			Name:     req.Name,
			Email:    req.Email,
			TimeZone: c.timezone,
			Language: c.language,
		},
		"bookingFieldsResponses": map[string]string{"notes": notes},
		"metadata":               map[string]string{},
	}
	body, err := c.post(ctx, "/bookings", c.versionBookings, payload)
	if err != nil {
		return nil, err
	}
	data, err := validateEnvelope(body, "create booking")
	if err != nil {
		return nil, err
	}
	var booking Booking
	if err := json.Unmarshal(data, &booking); err != nil {
		return nil, fmt.Errorf("parse booking response: %v", err)
	}
	return &booking, nil
}

func (c *Client) get(ctx context.Context, path, apiVersion string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.applyHeaders(req, apiVersion)
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path, apiVersion string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	c.applyHeaders(req, apiVersion)
	return c.do(req)
}

func (c *Client) applyHeaders(req *http.Request, apiVersion string) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("cal-api-version", apiVersion)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	c.log.Debug().Str("method", req.Method).Str("path", req.URL.Path).Msg("calcom request")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}

// statusError decodes the API's message/error.message detail when present.
func statusError(code int, body []byte) error {
	var detail struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &detail); err == nil {
		msg = detail.Message
		if msg == "" {
			msg = detail.Error.Message
		}
	}
	if msg == "" {
		return fmt.Errorf("calcom request failed: status %d", code)
	}
	return fmt.Errorf("calcom request failed: status %d: %s", code, msg)
}

func validateEnvelope(body []byte, operation string) (json.RawMessage, error) {
	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse %s response: %v", operation, err)
	}
	if envelope.Status != "" && envelope.Status != "success" {
		return nil, fmt.Errorf("%s failed: response status %q", operation, envelope.Status)
	}
	if len(envelope.Data) == 0 {
		return nil, fmt.Errorf("unexpected data structure in %s response", operation)
	}
	return envelope.Data, nil
}
