package port

import "context"

type HealthService interface {
	GetSystemHealth(ctx context.Context) map[string]interface{}
	GetDetailedHealth(ctx context.Context) map[string]interface{}
}
