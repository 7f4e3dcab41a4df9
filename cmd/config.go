package cmd

import "time"

// Config carries everything the composition root needs to assemble the
// application. Values come from the environment; see cmd/app/main.go for
// the variable names and defaults.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	ORSAPIKey  string
	ORSBaseURL string

	// DepotLat and DepotLng locate the single depot all trips start and
	// end at.
	DepotLat float64
	DepotLng float64

	// PartnerPoolSize is the fixed number of delivery partners.
	PartnerPoolSize int

	// ClusterRadiusMeters is the maximum distance between two drop-offs
	// sharing one trip.
	ClusterRadiusMeters float64

	// ReturnEtaRatio is the fraction of the delivery ETA budgeted for the
	// trip back to the depot.
	ReturnEtaRatio float64

	// PollInterval is the dispatch cycle period; ErrorBackoff is the
	// shortened sleep after a failed cycle.
	PollInterval time.Duration
	ErrorBackoff time.Duration

	// EnableOrderGenerator turns on the simulated order source.
	EnableOrderGenerator bool
}
