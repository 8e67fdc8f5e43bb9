package service

import (
	"fmt"

	"github.com/noah-isme/residence-portal-api/internal/models"
)

// TransitionMessage renders the title and message sent to a requester after their request
// of kind moved to status. It is deterministic and has no side effects.
func TransitionMessage(kind models.Kind, status models.RequestStatus, payload models.RequestPayload) (string, string) {
	switch p := payload.(type) {
	case models.SleepoverRequest:
		return "Sleepover Request Update",
			fmt.Sprintf("Your sleepover request for %s %s %s", p.GuestName, p.GuestSurname, statusPhrase(status))
	case models.Complaint:
		return "Complaint Update",
			fmt.Sprintf("Your complaint %q %s", p.Title, statusPhrase(status))
	case models.MaintenanceTicket:
		return "Maintenance Request Update",
			fmt.Sprintf("Your maintenance request %q %s", p.Title, statusPhrase(status))
	case models.GuestVisit:
		return "Guest Registration Update",
			fmt.Sprintf("Guest registration for %s %s %s", p.FirstName, p.LastName, statusPhrase(status))
	}
	return "Request Update", fmt.Sprintf("Your %s request %s", kind, statusPhrase(status))
}

// statusPhrase reads as prose while keeping the status value verbatim for clients that match on it.
func statusPhrase(status models.RequestStatus) string {
	switch status {
	case models.StatusApproved, models.StatusRejected, models.StatusCompleted, models.StatusResolved, models.StatusDeclined:
		return "has been " + string(status)
	case models.StatusInProgress:
		return fmt.Sprintf("is now in progress (status: %s)", status)
	case models.StatusCheckedOut:
		return fmt.Sprintf("has been checked out (status: %s)", status)
	}
	return fmt.Sprintf("has been updated (status: %s)", status)
}

// ApplicationMessage renders the notification for an application decision.
func ApplicationMessage(status models.ApplicationStatus, response string) (string, string) {
	title := "Application Denied"
	message := "Your residence application has been denied."
	if status == models.ApplicationAccepted {
		title = "Application Approved"
		message = "Your residence application has been accepted. Welcome to the residence!"
	}
	if response != "" {
		message += " " + response
	}
	return title, message
}

// departureEntry is the communication log line recorded when a visitor leaves.
func departureEntry(req *models.Request) string {
	if p, ok := req.Payload.(models.GuestVisit); ok {
		return fmt.Sprintf("Guest %s %s checked out successfully", p.FirstName, p.LastName)
	}
	return "Sleepover guest checked out successfully"
}

// defaultResponse fills adminResponse for transitions that carry no text.
func defaultResponse(kind models.Kind, status models.RequestStatus) string {
	return fmt.Sprintf("%s request %s", kindLabel(kind), status)
}

func kindLabel(kind models.Kind) string {
	switch kind {
	case models.KindGuest:
		return "Guest"
	case models.KindSleepover:
		return "Sleepover"
	case models.KindMaintenance:
		return "Maintenance"
	case models.KindComplaint:
		return "Complaint"
	}
	return string(kind)
}
