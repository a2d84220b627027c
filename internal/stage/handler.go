package stage

import (
	"context"

	"cadence/internal/catalog"
)

// Handler describes the contract the pipeline runner needs from each stage.
type Handler interface {
	Prepare(context.Context, *catalog.Track) error
	Execute(context.Context, *catalog.Track) error
	HealthCheck(context.Context) Health
}
