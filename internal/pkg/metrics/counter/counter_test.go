package counter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dokseo/dokseo/internal/pkg/clock"
)

func TestPointsKey(t *testing.T) {
	p := clock.Period{Year: 2024, Month: time.June}
	assert.Equal(t, "challenge:points:AR:2024:06", pointsKey("AR", p))

	p = clock.Period{Year: 2025, Month: time.December}
	assert.Equal(t, "challenge:points:RC:2025:12", pointsKey("RC", p))
}
