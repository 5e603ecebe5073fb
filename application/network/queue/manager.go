package queue

import "tunio/infrastructure/settings"

// Manager creates and disposes the platform's queue together with the
// network-stack configuration of its interface.
type Manager interface {
	CreateQueue(s settings.Settings) (Queue, error)
	DisposeQueue(s settings.Settings) error
}
