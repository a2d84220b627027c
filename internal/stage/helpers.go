package stage

import (
	"strings"

	"cadence/internal/catalog"
	"cadence/internal/services"
)

// RequireIdentity checks that a track carries the title and artist every
// stage needs to operate. On failure it returns a services.ErrValidation
// suitable for stage Execute methods.
func RequireIdentity(track *catalog.Track) error {
	if track == nil || strings.TrimSpace(track.Title) == "" || strings.TrimSpace(track.Artist) == "" {
		return services.Wrap(
			services.ErrValidation, "stage", "require identity",
			"Track is missing title or artist; fix the catalog row and retry", nil)
	}
	return nil
}
