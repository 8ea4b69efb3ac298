package exception

import "errors"

// Feed lifecycle and subscription assembly errors
var (
	ErrInvalidJob               = errors.New("feed: job is not a live job")
	ErrNotActive                = errors.New("feed: feed is not active")
	ErrUnsupportedSecurityType  = errors.New("feed: queue handler cannot provide universe data for security type")
	ErrSubscriptionExists       = errors.New("feed: subscription already exists for configuration")
	ErrSubscriptionConstruction = errors.New("feed: subscription construction failed")
	ErrWarmupSource             = errors.New("feed: warmup source failed")
)

// Queue bridge errors
var (
	ErrProducerFault = errors.New("queue: producer fault")
)
