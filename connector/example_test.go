package connector_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/serviceops/connector"
)

// echoDriver is a driver that always succeeds.
type echoDriver struct{}

func (echoDriver) Connect(ctx context.Context) error    { return nil }
func (echoDriver) Disconnect(ctx context.Context) error { return nil }
func (echoDriver) Execute(ctx context.Context, operation string, args map[string]any) (any, error) {
	return operation + " done", nil
}

func Example() {
	conn := connector.New("calendly", echoDriver{},
		connector.WithConfig(connector.Config{
			MaxRetries:    3,
			BackoffFactor: 2.0,
			MaxDelay:      60 * time.Second,
		}),
		connector.WithBreakerConfig(connector.BreakerConfig{
			FailureThreshold: 5,
			RecoveryTimeout:  time.Minute,
		}),
	)

	result := conn.Execute(context.Background(), "list_events", map[string]any{"count": 10})
	fmt.Println(result.Success, result.Data, result.RetryCount)
	// Output: true list_events done 0
}

func ExampleRegistry() {
	reg := connector.NewRegistry()
	reg.Register(connector.New("calendly", echoDriver{}))
	reg.Register(connector.New("gmail", echoDriver{}))

	agg := reg.CheckAll(context.Background())
	fmt.Println(agg.OverallHealthy, agg.HealthyCount, agg.TotalCount)

	reg.CleanupAll(context.Background())
	// Output: true 2 2
}
