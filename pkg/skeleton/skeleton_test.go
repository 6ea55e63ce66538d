package skeleton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/motionkit/mocap/pkg/math"
)

// testChannels returns the standard position+rotation channel list for
// the given joint count.
func testChannels(jointCount int) []string {
	out := make([]string, 0, jointCount*ChannelsPerJoint)
	for i := 0; i < jointCount; i++ {
		out = append(out, channelOrder[:]...)
	}
	return out
}

// hipsSpineNeck builds the reference three-joint chain:
// Hips(root) -> Spine -> Neck, two frames of motion. Hips starts at the
// world origin; Hips carries a nonzero rotation so rotation-preservation
// can be asserted.
func hipsSpineNeck(t *testing.T) *Skeleton {
	t.Helper()
	hierarchy := []JointDesc{
		{Name: "Hips", Offset: math.Vec3{}},
		{Name: "Spine", Parent: "Hips", Offset: math.Vec3{Y: 10}},
		{Name: "Neck", Parent: "Spine", Offset: math.Vec3{Y: 5}},
	}
	motion := mat.NewDense(2, 18, []float64{
		0, 0, 0, 30, 45, 60, 10, 10, 10, 0, 0, 0, 20, 20, 20, 0, 0, 0,
		1, 1, 1, 30, 45, 60, 11, 11, 11, 0, 0, 0, 21, 21, 21, 0, 0, 0,
	})
	s, err := New(hierarchy, testChannels(3), motion)
	require.NoError(t, err)
	return s
}

func TestNewValidSkeleton(t *testing.T) {
	s := hipsSpineNeck(t)

	assert.Equal(t, "Hips", s.Root())
	assert.Equal(t, 3, s.JointCount())
	assert.Equal(t, 2, s.FrameCount())

	parent, err := s.Parent("Neck")
	require.NoError(t, err)
	assert.Equal(t, "Spine", parent)

	parent, err = s.Parent("Hips")
	require.NoError(t, err)
	assert.Equal(t, "", parent)

	kids, err := s.Children("Hips")
	require.NoError(t, err)
	assert.Equal(t, []string{"Spine"}, kids)

	off, err := s.Offset("Spine")
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{Y: 10}, off)
}

func TestNewShapeMismatch(t *testing.T) {
	hierarchy := []JointDesc{
		{Name: "Hips"},
		{Name: "Spine", Parent: "Hips", Offset: math.Vec3{Y: 10}},
	}

	// Channel list too short for two joints.
	_, err := New(hierarchy, testChannels(1), mat.NewDense(1, 12, nil))
	require.ErrorIs(t, err, ErrShapeMismatch)

	// Motion column count does not match the channel list.
	_, err = New(hierarchy, testChannels(2), mat.NewDense(1, 6, nil))
	require.ErrorIs(t, err, ErrShapeMismatch)

	// Rotation channels before position channels.
	bad := []string{
		"Xrotation", "Yrotation", "Zrotation", "Xposition", "Yposition", "Zposition",
		"Xrotation", "Yrotation", "Zrotation", "Xposition", "Yposition", "Zposition",
	}
	_, err = New(hierarchy, bad, mat.NewDense(1, 12, nil))
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestNewHierarchyErrors(t *testing.T) {
	channels := testChannels(2)
	motion := mat.NewDense(1, 12, nil)

	_, err := New(nil, nil, mat.NewDense(1, 1, nil))
	require.ErrorIs(t, err, ErrHierarchy)

	// Two parentless joints.
	_, err = New([]JointDesc{
		{Name: "Hips"},
		{Name: "Spine"},
	}, channels, motion)
	require.ErrorIs(t, err, ErrHierarchy)

	// No parentless joint.
	_, err = New([]JointDesc{
		{Name: "Hips", Parent: "Spine"},
		{Name: "Spine", Parent: "Hips"},
	}, channels, motion)
	require.ErrorIs(t, err, ErrHierarchy)

	// Dangling parent reference.
	_, err = New([]JointDesc{
		{Name: "Hips"},
		{Name: "Spine", Parent: "Ghost"},
	}, channels, motion)
	require.ErrorIs(t, err, ErrHierarchy)

	// Duplicate joint name.
	_, err = New([]JointDesc{
		{Name: "Hips"},
		{Name: "Hips", Parent: "Hips"},
	}, channels, motion)
	require.ErrorIs(t, err, ErrHierarchy)

	// Cycle below the root.
	_, err = New([]JointDesc{
		{Name: "Hips"},
		{Name: "Spine", Parent: "Neck"},
		{Name: "Neck", Parent: "Spine"},
	}, testChannels(3), mat.NewDense(1, 18, nil))
	require.ErrorIs(t, err, ErrHierarchy)
}

func TestParentWalkBounded(t *testing.T) {
	s := hipsSpineNeck(t)

	// Every joint must reach the root in at most jointCount-1 hops.
	for _, jd := range s.Joints() {
		name := jd.Name
		hops := 0
		for {
			parent, err := s.Parent(name)
			require.NoError(t, err)
			if parent == "" {
				break
			}
			name = parent
			hops++
			require.LessOrEqual(t, hops, s.JointCount()-1)
		}
		assert.Equal(t, s.Root(), name)
	}
}

func TestJointQueries(t *testing.T) {
	s := hipsSpineNeck(t)

	pos, err := s.JointPosition("Hips", 0)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{}, pos)

	pos, err = s.JointPosition("Spine", 1)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{X: 11, Y: 11, Z: 11}, pos)

	rot, err := s.JointRotation("Hips", 0)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{X: 30, Y: 45, Z: 60}, rot)

	rot, err = s.JointRotation("Neck", 1)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{}, rot)
}

func TestJointQueryErrors(t *testing.T) {
	s := hipsSpineNeck(t)

	_, err := s.JointPosition("Ghost", 0)
	require.ErrorIs(t, err, ErrJointNotFound)

	_, err = s.JointPosition("Hips", 9999)
	require.ErrorIs(t, err, ErrFrameIndex)

	_, err = s.JointRotation("Hips", -1)
	require.ErrorIs(t, err, ErrFrameIndex)

	_, err = s.JointRotation("Ghost", 0)
	require.ErrorIs(t, err, ErrJointNotFound)
}

func TestComputeRelativePositions(t *testing.T) {
	s := hipsSpineNeck(t)
	s.ComputeRelativePositions()

	// Root already at the origin in frame 0, so frame 0 is unchanged.
	want := map[string]math.Vec3{
		"Hips":  {},
		"Spine": {X: 10, Y: 10, Z: 10},
		"Neck":  {X: 20, Y: 20, Z: 20},
	}
	for name, w := range want {
		for f := 0; f < s.FrameCount(); f++ {
			pos, err := s.JointPosition(name, f)
			require.NoError(t, err)
			assert.Equal(t, w, pos, "joint %s frame %d", name, f)
		}
	}

	// Rotations must be untouched.
	rot, err := s.JointRotation("Hips", 1)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{X: 30, Y: 45, Z: 60}, rot)
}

func TestComputeRelativePositionsNonZeroRoot(t *testing.T) {
	hierarchy := []JointDesc{
		{Name: "Hips"},
		{Name: "Spine", Parent: "Hips", Offset: math.Vec3{Y: 10}},
		{Name: "Neck", Parent: "Spine", Offset: math.Vec3{Y: 5}},
	}
	motion := mat.NewDense(1, 18, []float64{
		5, 5, 5, 0, 0, 0, 10, 10, 10, 0, 0, 0, 20, 20, 20, 0, 0, 0,
	})
	s, err := New(hierarchy, testChannels(3), motion)
	require.NoError(t, err)

	s.ComputeRelativePositions()

	pos, err := s.JointPosition("Hips", 0)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{}, pos)

	pos, err = s.JointPosition("Spine", 0)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{X: 5, Y: 5, Z: 5}, pos)

	pos, err = s.JointPosition("Neck", 0)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{X: 15, Y: 15, Z: 15}, pos)
}

func TestComputeRelativePositionsTwiceIsNoOp(t *testing.T) {
	s := hipsSpineNeck(t)
	s.ComputeRelativePositions()
	first := s.Motion()

	// The root's relative position is exactly zero after the first call,
	// so subtracting it again changes nothing.
	s.ComputeRelativePositions()
	assert.True(t, mat.Equal(first, s.Motion()))
}

func TestConstructionCopiesMotion(t *testing.T) {
	hierarchy := []JointDesc{{Name: "Hips"}}
	motion := mat.NewDense(1, 6, []float64{5, 5, 5, 0, 0, 0})
	s, err := New(hierarchy, testChannels(1), motion)
	require.NoError(t, err)

	s.ComputeRelativePositions()

	// The caller's matrix must be untouched by in-place transforms.
	assert.Equal(t, 5.0, motion.At(0, 0))
	pos, err := s.JointPosition("Hips", 0)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{}, pos)
}

func TestSamplePosition(t *testing.T) {
	s := hipsSpineNeck(t)

	// Exact frame indices match the integer query.
	pos, err := s.SamplePosition("Spine", 1)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{X: 11, Y: 11, Z: 11}, pos)

	// Halfway between frames 0 and 1.
	pos, err = s.SamplePosition("Neck", 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 20.5, pos.X, 1e-12)
	assert.InDelta(t, 20.5, pos.Y, 1e-12)
	assert.InDelta(t, 20.5, pos.Z, 1e-12)

	rot, err := s.SampleRotation("Hips", 0.25)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{X: 30, Y: 45, Z: 60}, rot)

	_, err = s.SamplePosition("Spine", -0.1)
	require.ErrorIs(t, err, ErrFrameIndex)

	_, err = s.SamplePosition("Spine", 1.5)
	require.ErrorIs(t, err, ErrFrameIndex)

	_, err = s.SamplePosition("Ghost", 0)
	require.ErrorIs(t, err, ErrJointNotFound)
}
