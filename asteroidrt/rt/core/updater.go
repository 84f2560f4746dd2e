package core

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Metric names reported to a CostObserver.
const (
	MetricRotate = "rotate"
	MetricUpload = "upload"
	MetricUpdate = "update"
)

// RangeWriter receives the host range that changed this frame.
// gpu.InstanceBuffer implements it.
type RangeWriter interface {
	UpdateRange(offset, count int, data []InstanceTransform) error
}

type CostObserver interface {
	Observe(metric string, d time.Duration)
}

// Updater owns the host copy of the instance set and rotates the outer
// rotate groups around the Y axis by a fixed step every frame.
type Updater struct {
	Instances []InstanceTransform

	groups      int
	groupSize   int
	rotateLimit int
	rotation    mgl32.Mat4

	writer   RangeWriter
	observer CostObserver
}

// NewUpdater takes ownership of instances. cfg must already be validated
// against len(instances).
func NewUpdater(cfg FieldConfig, instances []InstanceTransform, writer RangeWriter) *Updater {
	u := &Updater{
		Instances: instances,
		groups:    cfg.Groups,
		groupSize: cfg.GroupSize(),
		rotation:  mgl32.HomogRotate3DY(cfg.Step),
		writer:    writer,
	}
	u.SetRotateLimit(cfg.RotateLimit)
	return u
}

func (u *Updater) SetObserver(o CostObserver) {
	u.observer = o
}

func (u *Updater) Groups() int {
	return u.groups
}

func (u *Updater) RotateLimit() int {
	return u.rotateLimit
}

// SetRotateLimit clamps limit into [0, Groups].
func (u *Updater) SetRotateLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	if limit > u.groups {
		limit = u.groups
	}
	u.rotateLimit = limit
}

func (u *Updater) IncreaseRotateLimit() {
	u.SetRotateLimit(u.rotateLimit + 1)
}

func (u *Updater) DecreaseRotateLimit() {
	u.SetRotateLimit(u.rotateLimit - 1)
}

// ActiveCount is min(N, rotateLimit * N/G).
func (u *Updater) ActiveCount() int {
	return min(len(u.Instances), u.rotateLimit*u.groupSize)
}

// Advance rotates the active prefix one step and pushes it to the writer.
// It returns the number of instances that were rotated.
func (u *Updater) Advance() (int, error) {
	active := u.ActiveCount()
	if active == 0 {
		return 0, nil
	}

	t1 := time.Now()
	for i := 0; i < active; i++ {
		u.Instances[i] = u.rotation.Mul4(u.Instances[i])
	}

	t2 := time.Now()
	if u.writer != nil {
		if err := u.writer.UpdateRange(0, active, u.Instances[:active]); err != nil {
			return 0, err
		}
	}
	t3 := time.Now()

	if u.observer != nil {
		u.observer.Observe(MetricRotate, t2.Sub(t1))
		u.observer.Observe(MetricUpload, t3.Sub(t2))
		u.observer.Observe(MetricUpdate, t3.Sub(t1))
	}
	return active, nil
}
