package workflows

import (
	"context"
	"errors"
	"log/slog"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/donamatch/donamatch/internal/core/domain"
)

// WorkflowStarter is the subset of client.Client used to start workflows.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// Dispatcher starts one assignment-notification workflow per assigned
// donation event.
type Dispatcher struct {
	starter   WorkflowStarter
	taskQueue string
}

func NewDispatcher(starter WorkflowStarter, taskQueue string) *Dispatcher {
	return &Dispatcher{starter: starter, taskQueue: taskQueue}
}

// HandleAssigned is an event handler for donation.assigned. Redelivered
// events map to the same workflow id and are acknowledged without a second run.
func (d *Dispatcher) HandleAssigned(ctx context.Context, ev *domain.DonationEvent) error {
	if ev.Type != domain.EventDonationAssigned || ev.NGOID == nil {
		slog.WarnContext(ctx, "skipping event without assignment", "event_id", ev.ID, "type", ev.Type)
		return nil
	}

	in := AssignmentInput{EventID: ev.ID, DonationID: ev.DonationID, NGOID: *ev.NGOID}
	opts := client.StartWorkflowOptions{
		ID:                    in.WorkflowID(),
		TaskQueue:             d.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
	run, err := d.starter.ExecuteWorkflow(ctx, opts, AssignmentNotificationWorkflow, in)
	if err != nil {
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &started) {
			slog.InfoContext(ctx, "assignment notice already started", "workflow_id", opts.ID)
			return nil
		}
		return err
	}

	slog.InfoContext(ctx, "assignment notice started",
		"workflow_id", run.GetID(), "run_id", run.GetRunID(), "donation_id", in.DonationID, "ngo_id", in.NGOID)
	return nil
}
