package service

import (
	"context"

	"taxidispatch/pkg/models"
)

// Notifier is the outbound collaborator surface for order events. The core
// fires events and moves on; delivery failures are the collaborator's problem.
type Notifier interface {
	OrderCreated(ctx context.Context, order *models.Order)
	OrderAccepted(ctx context.Context, order *models.Order)
	OrderCompleted(ctx context.Context, order *models.Order)
	OrderCanceled(ctx context.Context, order *models.Order)
}

type noopNotifier struct{}

func (noopNotifier) OrderCreated(context.Context, *models.Order)   {}
func (noopNotifier) OrderAccepted(context.Context, *models.Order)  {}
func (noopNotifier) OrderCompleted(context.Context, *models.Order) {}
func (noopNotifier) OrderCanceled(context.Context, *models.Order)  {}

// NopNotifier is used when no Telegram integration is configured.
func NopNotifier() Notifier { return noopNotifier{} }
