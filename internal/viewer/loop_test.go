package viewer

import (
	"testing"
	"time"

	"github.com/Faultbox/panoview/internal/engine"
	"github.com/Faultbox/panoview/internal/engine/camera"
	"github.com/Faultbox/panoview/internal/engine/scene"
)

func newTestLoop(s engine.Scene) (*FrameLoop, *fakeCamera, *fakeRenderer) {
	cam := &fakeCamera{Perspective: camera.NewPerspective(75, 4.0/3.0, NearPlane, FarPlane)}
	r := &fakeRenderer{}
	l := NewFrameLoop(camera.NewOrientation(), camera.DefaultDamping,
		func() engine.Scene { return s }, cam, r)
	return l, cam, r
}

func TestTickOrientsCameraAndRenders(t *testing.T) {
	s := scene.New()
	s.Add(&fakeMesh{"pano"})
	l, cam, r := newTestLoop(s)

	l.Update(func(o *camera.Orientation) { o.SetTarget(90, 0) })
	l.Tick()

	if cam.lookAtInvoked != 1 {
		t.Fatalf("expected one LookAt, got %d", cam.lookAtInvoked)
	}
	if cam.lastLookAt.Z <= 0 {
		t.Errorf("camera should turn toward +Z, looking at %v", cam.lastLookAt)
	}
	if r.renders != 1 || len(r.seen[0]) != 1 {
		t.Errorf("expected one render of one mesh, got %d renders", r.renders)
	}
}

func TestTickRebuildsProjectionOnlyWhenDirty(t *testing.T) {
	l, cam, _ := newTestLoop(scene.New())
	base := cam.projections

	l.Tick()
	if cam.projections != base {
		t.Errorf("clean tick rebuilt projection")
	}

	l.InvalidateProjection()
	l.Tick()
	l.Tick()
	if cam.projections != base+1 {
		t.Errorf("expected exactly one rebuild, got %d", cam.projections-base)
	}
}

func TestTickWithoutSceneSkipsRender(t *testing.T) {
	l, _, r := newTestLoop(nil)
	l.Tick()
	if r.renders != 0 {
		t.Errorf("expected no render without a scene, got %d", r.renders)
	}
	if _, ok := l.Pose(); !ok {
		t.Error("pose should still be recorded")
	}
}

func TestPoseRecordedPerTick(t *testing.T) {
	l, _, _ := newTestLoop(scene.New())
	if _, ok := l.Pose(); ok {
		t.Fatal("expected no pose before the first tick")
	}

	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return stamp }
	l.Update(func(o *camera.Orientation) { o.SetTarget(0, 400) })

	for i := 0; i < 300; i++ {
		l.Tick()
	}

	p, ok := l.Pose()
	if !ok {
		t.Fatal("expected a pose")
	}
	if !p.Time.Equal(stamp) {
		t.Errorf("expected timestamp %v, got %v", stamp, p.Time)
	}
	if p.Lat > camera.MaxLatitude {
		t.Errorf("pose latitude escaped bounds: %v", p.Lat)
	}
	if l := p.Target.Length(); l < camera.SphereRadius-0.01 || l > camera.SphereRadius+0.01 {
		t.Errorf("pose target should lie on the sphere, |p| = %v", l)
	}
}
