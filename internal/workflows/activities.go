package workflows

import (
	"context"
	"fmt"
	"strings"

	"github.com/donamatch/donamatch/internal/core/domain"
	"github.com/donamatch/donamatch/internal/core/ports"
)

// AssignmentActivities holds the activity implementations for the
// assignment-notification workflow.
type AssignmentActivities struct {
	Donations ports.DonationRepository
	NGOs      ports.NGORepository
	Notifier  ports.NotificationService
}

// PrepareAssignmentNotice loads the donation and NGO and renders the notice
// telling the NGO a donation is on its way.
func (a *AssignmentActivities) PrepareAssignmentNotice(ctx context.Context, donationID, ngoID int64) (domain.Notice, error) {
	d, err := a.Donations.GetByID(ctx, donationID)
	if err != nil {
		return domain.Notice{}, fmt.Errorf("get donation %d: %w", donationID, err)
	}
	ngo, err := a.NGOs.GetByID(ctx, ngoID)
	if err != nil {
		return domain.Notice{}, fmt.Errorf("get ngo %d: %w", ngoID, err)
	}
	return RenderAssignmentNotice(d, ngo), nil
}

// DeliverNotice hands a rendered notice to the notifier.
func (a *AssignmentActivities) DeliverNotice(ctx context.Context, notice domain.Notice) error {
	if a.Notifier == nil {
		return fmt.Errorf("no notifier configured")
	}
	return a.Notifier.Send(ctx, notice)
}

// RenderAssignmentNotice builds the NGO-facing notice for an assignment.
func RenderAssignmentNotice(d *domain.Donation, ngo *domain.NGO) domain.Notice {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", ngo.Name)
	b.WriteString("A new donation has been assigned to your organization:\n\n")
	fmt.Fprintf(&b, "  Donation ID: %d\n", d.ID)
	fmt.Fprintf(&b, "  Title: %s\n", d.Title)
	fmt.Fprintf(&b, "  Type: %s\n", d.Type)
	fmt.Fprintf(&b, "  Donor: %s\n", d.DonorName)
	if d.Address != "" {
		fmt.Fprintf(&b, "  Pickup address: %s\n", d.Address)
	}
	b.WriteString("\nPlease contact the donor to arrange collection.\n\nThank you for your valuable service!\n")

	return domain.Notice{
		To:      ngo.Email,
		Subject: "New Donation Assignment - " + d.Title,
		Body:    b.String(),
	}
}
