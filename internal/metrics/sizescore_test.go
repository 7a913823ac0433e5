package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

func TestSizeScoreMetric(t *testing.T) {
	m := NewSizeScoreMetric()

	t.Run("returns per-device map and no scalar", func(t *testing.T) {
		b := &types.Bundle{Host: &types.HostMetadata{SizeMB: 4000}}
		res := m.Compute(context.Background(), b)

		require.NotNil(t, res.ByDevice)
		assert.Len(t, res.ByDevice, 4)

		_, scalar := res.Scalar()
		assert.False(t, scalar, "map-valued result must not join the scalar sum")

		assert.Equal(t, 0.5, res.ByDevice["raspberry_pi"])
		assert.Equal(t, 1.0, res.ByDevice["jetson_nano"])
		assert.Equal(t, 1.0, res.ByDevice["desktop_pc"])
		assert.Equal(t, 1.0, res.ByDevice["aws_server"])
	})

	t.Run("unknown size scores zero everywhere", func(t *testing.T) {
		res := m.Compute(context.Background(), &types.Bundle{})
		for device, score := range res.ByDevice {
			assert.Equal(t, 0.0, score, "device %s", device)
		}
	})

	t.Run("tiny model fits everywhere", func(t *testing.T) {
		b := &types.Bundle{Host: &types.HostMetadata{SizeMB: 10}}
		res := m.Compute(context.Background(), b)
		for device, score := range res.ByDevice {
			assert.Equal(t, 1.0, score, "device %s", device)
		}
	})

	t.Run("huge model scores proportionally", func(t *testing.T) {
		b := &types.Bundle{Host: &types.HostMetadata{SizeMB: 128000}}
		res := m.Compute(context.Background(), b)
		assert.Equal(t, 0.5, res.ByDevice["aws_server"])
		assert.InDelta(t, 0.016, res.ByDevice["raspberry_pi"], 1e-9)
	})
}
