package saccount

import (
	"math"
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBigToFloat(t *testing.T) {
	assert.Equal(t, float64(0), bigToFloat(big.NewInt(0)))
	assert.Equal(t, float64(21_000), bigToFloat(big.NewInt(21_000)))

	// above 64 bits the value must not wrap
	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	assert.Equal(t, math.Pow(2, 70), bigToFloat(huge))

	refundGauge.Set(bigToFloat(huge))
	assert.Equal(t, math.Pow(2, 70), testutil.ToFloat64(refundGauge))
}
