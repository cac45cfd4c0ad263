package robot

import (
	"context"
	"log/slog"
	"time"
)

// DryRunArm is a MotionChannel that only logs. ActionTime simulates how
// long the robot takes to acknowledge a motion, so rehearsals keep their
// real pacing.
type DryRunArm struct {
	ActionTime time.Duration
	Logger     *slog.Logger
}

// NewDryRunArm returns a dry-run arm with a one second action time.
func NewDryRunArm(logger *slog.Logger) *DryRunArm {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRunArm{
		ActionTime: time.Second,
		Logger:     logger.With("component", "robot.dryrun"),
	}
}

// ExecuteAction logs the action and waits ActionTime.
func (d *DryRunArm) ExecuteAction(ctx context.Context, actionID int) error {
	d.Logger.Info("arm action", "action_id", actionID)
	return d.wait(ctx)
}

// ExecuteCustom logs the custom motion and waits ActionTime.
func (d *DryRunArm) ExecuteCustom(ctx context.Context, name string) error {
	d.Logger.Info("custom motion", "name", name)
	return d.wait(ctx)
}

func (d *DryRunArm) wait(ctx context.Context) error {
	if d.ActionTime <= 0 {
		return nil
	}
	select {
	case <-time.After(d.ActionTime):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ MotionChannel = (*DryRunArm)(nil)
