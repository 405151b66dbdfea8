// Package notify tells downstream systems about submitted applications.
package notify

import (
	"context"

	"grant-portal/internal/models"
)

// Notifier is called once an application reaches the submitted status.
type Notifier interface {
	ApplicationSubmitted(ctx context.Context, app *models.Application) error
}

// NoOp discards every notification.
type NoOp struct{}

func (NoOp) ApplicationSubmitted(context.Context, *models.Application) error { return nil }
