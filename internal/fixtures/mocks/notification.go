// Package mocks holds testify mocks shared across package tests.
package mocks

import (
	"context"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/notification"
	"github.com/stretchr/testify/mock"
)

// Submitter is a mock notification.Submitter.
type Submitter struct {
	mock.Mock
}

func (m *Submitter) Submit(ctx context.Context, recipient, channel, message string) (*domain.Notification, error) {
	args := m.Called(ctx, recipient, channel, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

// Sender is a mock notification.Sender.
type Sender struct {
	mock.Mock
}

func (m *Sender) Send(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

var (
	_ notification.Submitter = (*Submitter)(nil)
	_ notification.Sender    = (*Sender)(nil)
)
