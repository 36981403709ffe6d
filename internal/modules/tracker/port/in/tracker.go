package in

import (
	"context"

	"prodman/internal/modules/tracker/dto"
)

type Usecase interface {
	Deploy(ctx context.Context, input dto.DeployInput) (dto.ScheduleOutput, error)
	DeployTemplate(ctx context.Context, templateID string) (dto.ScheduleOutput, error)
	Schedule(ctx context.Context) (dto.ScheduleOutput, error)
	Start(ctx context.Context) (dto.StartOutput, error)
	// Submit decodes a raw command token and queues it for the running session.
	Submit(ctx context.Context, token string) error
	Progress(ctx context.Context) (dto.ProgressOutput, error)
	Timeline(ctx context.Context) ([]dto.SegmentOutput, error)
	// Wait blocks until the current session completes or ctx is done.
	Wait(ctx context.Context) error
	Record(ctx context.Context, input dto.RecordInput) (dto.RecordOutput, error)
}
