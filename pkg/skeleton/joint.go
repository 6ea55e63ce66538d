package skeleton

import "github.com/motionkit/mocap/pkg/math"

// JointDesc describes one joint as supplied by an external loader:
// a name, the parent's name (empty for the root), and the rest-pose
// offset relative to the parent.
type JointDesc struct {
	Name   string
	Parent string
	Offset math.Vec3
}

// Joint is one record in the skeleton's joint arena. Parent is an index
// into the arena, -1 for the root. Storing indices instead of pointers
// keeps edge reversal during re-rooting a plain field update.
type Joint struct {
	Name   string
	Parent int
	Offset math.Vec3
}
