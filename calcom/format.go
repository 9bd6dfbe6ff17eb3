package calcom

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// FormattedAvailability checks availability and renders it as text the model
// can relay to the user, grouped by date with local times. An empty endDate
// defaults to startDate.
func (c *Client) FormattedAvailability(ctx context.Context, startDate, endDate string) (string, error) {
	if endDate == "" {
		endDate = startDate
	}
	availability, err := c.Slots(ctx, startDate, endDate)
	if err != nil {
		return "", err
	}
	if len(availability) == 0 {
		return fmt.Sprintf("No availability found for %s to %s", startDate, endDate), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available time slots for %s", startDate)
	if startDate != endDate {
		fmt.Fprintf(&b, " to %s", endDate)
	}
	fmt.Fprintf(&b, " (timezone: %s):\n", c.timezone)

	dates := make([]string, 0, len(availability))
	for date := range availability {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		day := ""
		if d, err := time.ParseInLocation("2006-01-02", date, c.location); err == nil {
			day = " (" + d.Weekday().String() + ")"
		}
		fmt.Fprintf(&b, "\n%s%s:\n", date, day)
		for _, slot := range availability[date] {
			start, err := c.toLocal(slot.Start)
			if err != nil {
				continue
			}
			fmt.Fprintf(&b, "- %s\n", start.Format("15:04"))
		}
	}
	return b.String(), nil
}

// FormattedBookings lists an attendee's scheduled bookings as text.
func (c *Client) FormattedBookings(ctx context.Context, email string) (string, error) {
	bookings, err := c.Bookings(ctx, email)
	if err != nil {
		return "", err
	}
	if len(bookings) == 0 {
		return fmt.Sprintf("No scheduled events found for %s.", email), nil
	}
	formatted := make([]string, 0, len(bookings))
	for _, booking := range bookings {
		formatted = append(formatted, c.formatBooking(booking, false))
	}
	return fmt.Sprintf("Scheduled events for %s (in %s):\n%s",
		email, c.timezone, strings.Join(formatted, "\n\n")), nil
}

// BookWithConfirmation creates a booking and returns a confirmation message.
func (c *Client) BookWithConfirmation(ctx context.Context, req BookingRequest) (string, error) {
	booking, err := c.CreateBooking(ctx, req)
	if err != nil {
		return "", err
	}
	return c.formatBooking(*booking, true), nil
}

func (c *Client) formatBooking(booking Booking, confirmed bool) string {
	start, err := c.toLocal(booking.Start)
	if err != nil {
		return "[Invalid booking: missing start time]"
	}
	endDisplay := ""
	if booking.End != "" {
		if end, err := c.toLocal(booking.End); err == nil {
			endDisplay = " to " + end.Format("15:04")
		}
	}
	title := booking.Title
	if title == "" {
		title = "Meeting"
	}
	description := booking.Description
	if description == "" {
		description = "No description provided"
	}
	attendeeName, attendeeEmail := "Unknown", "Unknown"
	if len(booking.Attendees) > 0 {
		if booking.Attendees[0].Name != "" {
			attendeeName = booking.Attendees[0].Name
		}
		if booking.Attendees[0].Email != "" {
			attendeeEmail = booking.Attendees[0].Email
		}
	}
	status := booking.Status
	if status == "" {
		status = "Unknown"
	}

	var lines []string
	if confirmed {
		lines = append(lines, "Meeting successfully booked!")
	}
	lines = append(lines,
		"Title: "+title,
		"Description: "+description,
		"Date: "+start.Format("2006-01-02 Monday"),
		fmt.Sprintf("Time: %s%s (in %s)", start.Format("15:04"), endDisplay, c.timezone),
		fmt.Sprintf("Attendee: %s (%s)", attendeeName, attendeeEmail),
		"Status: "+status,
	)
	return strings.Join(lines, "\n")
}

// toLocal parses an ISO-8601 time string and converts it into the client's
// timezone. Naive strings are assumed UTC.
func (c *Client) toLocal(s string) (time.Time, error) {
	t, err := parseISO(s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(c.location), nil
}

func parseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time string")
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}

// localToUTC converts a local ISO time string into a Z-suffixed UTC string.
// Strings already in UTC pass through; zoned strings are converted.
func localToUTC(s string, loc *time.Location) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "Z") {
		return s, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("2006-01-02T15:04:05Z"), nil
		}
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, loc)
	if err != nil {
		return "", fmt.Errorf("unrecognized time format %q", s)
	}
	return t.UTC().Format("2006-01-02T15:04:05Z"), nil
}
