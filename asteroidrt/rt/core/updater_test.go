package core

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rangeCall struct {
	offset, count int
	data          []InstanceTransform
}

type recordingWriter struct {
	calls []rangeCall
	err   error
}

func (w *recordingWriter) UpdateRange(offset, count int, data []InstanceTransform) error {
	if w.err != nil {
		return w.err
	}
	w.calls = append(w.calls, rangeCall{offset, count, append([]InstanceTransform(nil), data...)})
	return nil
}

type recordingObserver struct {
	metrics []string
}

func (o *recordingObserver) Observe(metric string, d time.Duration) {
	o.metrics = append(o.metrics, metric)
}

func newTestUpdater(t *testing.T, cfg FieldConfig) (*Updater, *recordingWriter, []InstanceTransform) {
	t.Helper()
	transforms, err := GenerateField(cfg, 99)
	require.NoError(t, err)
	original := append([]InstanceTransform(nil), transforms...)
	w := &recordingWriter{}
	return NewUpdater(cfg, transforms, w), w, original
}

func TestAdvanceRotatesOnlyActivePrefix(t *testing.T) {
	u, w, original := newTestUpdater(t, smallField())
	require.Equal(t, 300, u.ActiveCount())

	active, err := u.Advance()
	require.NoError(t, err)
	assert.Equal(t, 300, active)

	require.Len(t, w.calls, 1)
	assert.Equal(t, 0, w.calls[0].offset)
	assert.Equal(t, 300, w.calls[0].count)
	assert.Equal(t, u.Instances[:300], w.calls[0].data)

	for i := 0; i < 300; i++ {
		assert.NotEqual(t, original[i], u.Instances[i], "instance %d should have moved", i)
	}
	assert.Equal(t, original[300:], u.Instances[300:])
}

func TestAdvancePreservesShape(t *testing.T) {
	cfg := smallField()
	cfg.RotateLimit = cfg.Groups
	u, _, original := newTestUpdater(t, cfg)

	for range 1000 {
		_, err := u.Advance()
		require.NoError(t, err)
	}

	for i := range u.Instances {
		assert.InEpsilon(t, LinearDet(original[i]), LinearDet(u.Instances[i]), 5e-3, "instance %d", i)
		before, after := ScaleFactors(original[i]), ScaleFactors(u.Instances[i])
		for axis := 0; axis < 3; axis++ {
			assert.InEpsilon(t, before[axis], after[axis], 5e-3, "instance %d axis %d", i, axis)
		}
		// Yaw about the world Y axis keeps height and ring distance.
		p0, p1 := Translation(original[i]), Translation(u.Instances[i])
		assert.InDelta(t, p0.Y(), p1.Y(), 1e-3)
		assert.InDelta(t, mgl32.Vec2{p0.X(), p0.Z()}.Len(), mgl32.Vec2{p1.X(), p1.Z()}.Len(), 1e-2)
	}
}

func TestActiveCountMonotonic(t *testing.T) {
	u, _, _ := newTestUpdater(t, smallField())

	prev := -1
	for limit := 0; limit <= u.Groups(); limit++ {
		u.SetRotateLimit(limit)
		active := u.ActiveCount()
		assert.Greater(t, active, prev)
		assert.Equal(t, limit*100, active)
		prev = active
	}
	assert.Equal(t, len(u.Instances), u.ActiveCount())
}

func TestRotateLimitClamped(t *testing.T) {
	u, _, _ := newTestUpdater(t, smallField())

	u.SetRotateLimit(42)
	assert.Equal(t, 8, u.RotateLimit())
	u.IncreaseRotateLimit()
	assert.Equal(t, 8, u.RotateLimit())

	u.SetRotateLimit(-3)
	assert.Equal(t, 0, u.RotateLimit())
	u.DecreaseRotateLimit()
	assert.Equal(t, 0, u.RotateLimit())
	u.IncreaseRotateLimit()
	assert.Equal(t, 1, u.RotateLimit())
}

func TestAdvanceWithZeroLimitWritesNothing(t *testing.T) {
	cfg := smallField()
	cfg.RotateLimit = 0
	u, w, original := newTestUpdater(t, cfg)
	obs := &recordingObserver{}
	u.SetObserver(obs)

	active, err := u.Advance()
	require.NoError(t, err)
	assert.Zero(t, active)
	assert.Empty(t, w.calls)
	assert.Empty(t, obs.metrics)
	assert.Equal(t, original, u.Instances)
}

func TestAdvanceReportsCosts(t *testing.T) {
	u, _, _ := newTestUpdater(t, smallField())
	obs := &recordingObserver{}
	u.SetObserver(obs)

	_, err := u.Advance()
	require.NoError(t, err)
	assert.Equal(t, []string{MetricRotate, MetricUpload, MetricUpdate}, obs.metrics)
}

func TestAdvancePropagatesWriteError(t *testing.T) {
	u, w, _ := newTestUpdater(t, smallField())
	w.err = errors.New("device lost")

	active, err := u.Advance()
	assert.EqualError(t, err, "device lost")
	assert.Zero(t, active)
}
