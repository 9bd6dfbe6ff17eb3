package tools

import (
	"context"
	"fmt"

	"github.com/chadn/ai-chatbot-meetings/calcom"
	"github.com/chadn/ai-chatbot-meetings/model"
)

// CalendarTools builds the three calendar operations bound to one Cal.com
// client. Every failure from the client surfaces as an error-text result
// rather than an error return, so a bad date or a network hiccup becomes
// conversational context the model can recover from.
func CalendarTools(client *calcom.Client) []Tool {
	return []Tool{
		checkAvailabilityTool(client),
		bookMeetingTool(client),
		listBookingsTool(client),
	}
}

type checkAvailabilityParams struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func checkAvailabilityTool(client *calcom.Client) Tool {
	return tool{
		name: "check_availability",
		desc: "Check available meeting slots for a specific date range",
		params: JSONSchema{
			Type:     "object",
			Required: []string{"start_date"},
			Properties: map[string]JSONSchema{
				"start_date": {
					Type: "string",
					Desc: "Start date in YYYY-MM-DD format",
				},
				"end_date": {
					Type: "string",
					Desc: "End date in YYYY-MM-DD format, defaults to start_date",
				},
			},
		},
		runFn: func(ctx context.Context, call model.ToolCall) (model.ToolResult, error) {
			var p checkAvailabilityParams
			if err := unmarshalObject(call.Args, &p); err != nil {
				return errResult("check availability", err), nil
			}
			if p.StartDate == "" {
				return errResult("check availability", fmt.Errorf("start_date is required")), nil
			}
			text, err := client.FormattedAvailability(ctx, p.StartDate, p.EndDate)
			if err != nil {
				return errResult("checking availability", err), nil
			}
			return model.ToolResult{Content: text}, nil
		},
	}
}

type bookMeetingParams struct {
	StartTime   string `json:"start_time"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	EventTypeID int    `json:"event_type_id"`
	Reason      string `json:"reason"`
}

func bookMeetingTool(client *calcom.Client) Tool {
	return tool{
		name: "book_meeting",
		desc: "Book a meeting at the specified time",
		params: JSONSchema{
			Type:     "object",
			Required: []string{"start_time", "name", "email"},
			Properties: map[string]JSONSchema{
				"start_time": {
					Type: "string",
					Desc: "Meeting start time in ISO format (YYYY-MM-DDTHH:MM:SS)",
				},
				"name": {
					Type: "string",
					Desc: "Attendee's full name",
				},
				"email": {
					Type: "string",
					Desc: "Attendee's email address",
				},
				"event_type_id": {
					Type: "integer",
					Desc: "Event type ID from check_availability, defaults to the configured event type",
				},
				"reason": {
					Type: "string",
					Desc: "Optional reason for the meeting, stored as booking notes",
				},
			},
		},
		runFn: func(ctx context.Context, call model.ToolCall) (model.ToolResult, error) {
			var p bookMeetingParams
			if err := unmarshalObject(call.Args, &p); err != nil {
				return errResult("book meeting", err), nil
			}
			if p.StartTime == "" || p.Name == "" || p.Email == "" {
				return errResult("book meeting", fmt.Errorf("start_time, name, and email are required")), nil
			}
			text, err := client.BookWithConfirmation(ctx, calcom.BookingRequest{
				StartTime:   p.StartTime,
				Name:        p.Name,
				Email:       p.Email,
				Reason:      p.Reason,
				EventTypeID: p.EventTypeID,
			})
			if err != nil {
				return errResult("booking meeting", err), nil
			}
			return model.ToolResult{Content: text}, nil
		},
	}
}

type listBookingsParams struct {
	Email string `json:"email"`
}

func listBookingsTool(client *calcom.Client) Tool {
	return tool{
		name: "list_bookings",
		desc: "Get a list of scheduled booking events for a user by email",
		params: JSONSchema{
			Type:     "object",
			Required: []string{"email"},
			Properties: map[string]JSONSchema{
				"email": {
					Type: "string",
					Desc: "The email address of the attendee",
				},
			},
		},
		runFn: func(ctx context.Context, call model.ToolCall) (model.ToolResult, error) {
			var p listBookingsParams
			if err := unmarshalObject(call.Args, &p); err != nil {
				return errResult("list bookings", err), nil
			}
			if p.Email == "" {
				return errResult("list bookings", fmt.Errorf("email is required")), nil
			}
			text, err := client.FormattedBookings(ctx, p.Email)
			if err != nil {
				return errResult("retrieving scheduled events", err), nil
			}
			return model.ToolResult{Content: text}, nil
		},
	}
}

func errResult(operation string, err error) model.ToolResult {
	return model.ToolResult{
		Content: fmt.Sprintf("Error %s: %v", operation, err),
		IsError: true,
	}
}
