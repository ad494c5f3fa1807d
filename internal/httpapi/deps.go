package httpapi

import (
	"context"
	"log"

	"beacon-dashboard/internal/config"
	"beacon-dashboard/internal/dashboard"
	"beacon-dashboard/internal/domain"
	"beacon-dashboard/internal/events"
	"beacon-dashboard/internal/gateway"
)

// SurveySource answers gateway requests.
type SurveySource interface {
	SurveyData(ctx context.Context) gateway.Result
}

// FetchLog lists recent upstream attempts.
type FetchLog interface {
	Recent(ctx context.Context, limit int) ([]domain.FetchAttempt, error)
}

type Deps struct {
	Gateway  SurveySource
	Poller   *dashboard.Poller
	Renderer *dashboard.Renderer
	FetchLog FetchLog
	Hub      *events.Hub

	Config     config.Config
	ConfigPath string

	CorsOrigins []string
	Logger      *log.Logger
}
