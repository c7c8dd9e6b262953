package ports

import "context"

// HealthChecker verifies the availability of one backing dependency.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}
