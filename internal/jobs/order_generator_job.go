package jobs

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const (
	generatorRadiusKm = 2.5
	generatorMaxItems = 5
)

// OrderGeneratorJob simulates an order source for demo and load-testing
// setups: once a minute it registers an order at a random point within
// 2.5 km of the depot with one to five items.
type OrderGeneratorJob struct {
	handler commands.CreateOrderCommandHandler
	depot   kernel.GeoPoint
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewOrderGeneratorJob creates a job generating one synthetic order per
// minute around the given depot.
func NewOrderGeneratorJob(
	handler commands.CreateOrderCommandHandler, depot kernel.GeoPoint, logger *slog.Logger,
) *OrderGeneratorJob {
	return &OrderGeneratorJob{
		handler: handler,
		depot:   depot,
		cron:    cron.New(),
		logger:  logger.With("component", "order_generator_job"),
	}
}

// Start begins the order generator job.
func (j *OrderGeneratorJob) Start() error {
	_, err := j.cron.AddFunc("@every 1m", func() {
		ctx := context.Background()

		location, err := kernel.RandomGeoPointNear(j.depot, generatorRadiusKm)
		if err != nil {
			j.logger.ErrorContext(ctx, "Order generation failed", "error", err)
			return
		}

		orderID := uuid.NewString()
		itemCount := 1 + rand.IntN(generatorMaxItems)

		cmd, err := commands.NewCreateOrderCommand(orderID, time.Now().UTC(), location, itemCount)
		if err != nil {
			j.logger.ErrorContext(ctx, "Order generation failed", "error", err)
			return
		}

		if err = j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Order creation failed", "order_id", orderID, "error", err)
			return
		}

		j.logger.InfoContext(ctx, "Order generated",
			"order_id", orderID, "items", itemCount, "location", location.String())
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Order generator job started (one order per minute)")
	return nil
}

// Stop stops the order generator job.
func (j *OrderGeneratorJob) Stop() {
	j.cron.Stop()
	j.logger.Info("Order generator job stopped")
}
