package app

import (
	"time"

	"github.com/unireserva/unireserva/internal/config"
	"github.com/unireserva/unireserva/internal/event_bus"
	"github.com/unireserva/unireserva/internal/utils"
	"github.com/unireserva/unireserva/pkg/booking"
	"github.com/unireserva/unireserva/pkg/remote"
	"github.com/unireserva/unireserva/pkg/schedule"
)

// Dependencies holds all services and handlers for the gateway.
type Dependencies struct {
	Bus   *event_bus.EventBus
	Clock utils.Clock

	RemoteHolder  *remote.Holder
	RemoteHandler *remote.Handler

	Coordinator    *booking.Coordinator
	BookingHandler *booking.Handler

	ScheduleService *schedule.Service
	ScheduleHandler *schedule.Handler
}

// BuildDependencies initializes and wires all gateway services and handlers.
func BuildDependencies(cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Bus = event_bus.NewEventBus()
	deps.Clock = utils.SystemClock{}

	timeout := time.Duration(cfg.Remote.TimeoutSeconds) * time.Second
	deps.RemoteHolder = remote.NewHolder(cfg.Remote.BaseURL, timeout)
	deps.RemoteHandler = remote.NewHandler(deps.RemoteHolder)

	deps.Coordinator = booking.NewCoordinator(deps.RemoteHolder.Current, deps.Bus)
	deps.BookingHandler = booking.NewHandler(deps.Coordinator, deps.RemoteHolder.Current)

	deps.ScheduleService = schedule.NewService(deps.RemoteHolder.Current, deps.Clock, deps.Bus)
	deps.ScheduleHandler = schedule.NewHandler(deps.ScheduleService)

	return deps
}
