package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/donamatch/donamatch/internal/core/domain"
)

// AssignmentInput is the input for the assignment-notification workflow.
type AssignmentInput struct {
	EventID    string
	DonationID int64
	NGOID      int64
}

// WorkflowID derives a stable id so a redelivered event starts no second run.
func (in AssignmentInput) WorkflowID() string {
	return fmt.Sprintf("assignment-notice-%d-%d", in.DonationID, in.NGOID)
}

// AssignmentNotificationWorkflow renders and delivers the notice sent to an
// NGO when a donation is assigned to it.
func AssignmentNotificationWorkflow(ctx workflow.Context, input AssignmentInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting assignment notification", "donationID", input.DonationID, "ngoID", input.NGOID)

	prepOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	deliverOpts := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    5,
		},
	}

	// Step 1: Render the notice
	var notice domain.Notice
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, prepOpts),
		"PrepareAssignmentNotice", input.DonationID, input.NGOID).Get(ctx, &notice)
	if err != nil {
		return err
	}

	// Step 2: Deliver it
	err = workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, deliverOpts),
		"DeliverNotice", notice).Get(ctx, nil)
	if err != nil {
		logger.Warn("notice delivery failed", "to", notice.To, "error", err)
		return err
	}

	logger.Info("Assignment notice delivered", "to", notice.To)
	return nil
}
