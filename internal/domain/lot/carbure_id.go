package lot

import (
	"strconv"
	"strings"

	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// GenerateCarbureID builds the external reference of a lot: country code,
// period and a random suffix, e.g. "FR202403A1B2C3D4"
func GenerateCarbureID(country string, period valueobject.Period) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return strings.ToUpper(country) + strconv.Itoa(int(period)) + suffix
}
