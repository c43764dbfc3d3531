package repository

import (
	"context"

	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/rowset"
)

type AlertRepository struct {
	base
}

func NewAlertRepository(gw *database.Gateway, schemas Schemas) *AlertRepository {
	return &AlertRepository{base: base{gw: gw, schemas: schemas}}
}

const (
	fnUserAlerts  = "get_user_telemetry_alerts"
	fnUpdateAlert = "update_user_telemetry_alert"
)

// List returns the telemetry alerts raised on the user's devices.
func (r *AlertRepository) List(ctx context.Context, user string) ([]model.Record, error) {
	v, err := r.call(ctx, r.api(fnUserAlerts, "user"), false, rowset.List,
		"failed to retrieve telemetry alerts", user)
	if err != nil {
		return nil, err
	}
	return rowset.Decode[model.Record](v)
}

// Update snoozes or dismisses alerts and returns them as stored.
func (r *AlertRepository) Update(ctx context.Context, user string, alerts []model.TelemetryAlert) ([]model.Record, error) {
	v, err := r.call(ctx, r.core(fnUpdateAlert, "user", "alerts"), true, rowset.List,
		"failed to update telemetry alerts", user, alerts)
	if err != nil {
		return nil, err
	}
	return rowset.Decode[model.Record](v)
}
