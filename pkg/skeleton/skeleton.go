// Package skeleton models a hierarchical skeletal motion representation:
// a rooted tree of named joints with rest-pose offsets plus a per-frame
// motion matrix, with operations to query joints and re-root the tree.
//
// A Skeleton is a plain mutable value with no internal synchronization.
// Analyses that run concurrently must each construct their own instance.
package skeleton

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/motionkit/mocap/pkg/math"
)

// Skeleton owns a joint hierarchy and the motion matrix recorded for it.
// The motion matrix has one row per frame and six columns per joint, in
// joint declaration order. Position columns are world-space as loaded;
// ComputeRelativePositions and SetNewRoot re-express them relative to
// the current root, mutating the matrix in place.
type Skeleton struct {
	joints   []Joint
	index    map[string]int
	children map[int][]int
	root     int
	channels []string
	motion   *mat.Dense
	frames   int
}

// New constructs a Skeleton from a loader-supplied hierarchy, channel
// list, and motion matrix. The motion matrix is deep-copied so in-place
// transforms never alias the caller's data.
//
// Returns ErrShapeMismatch if the channel list or motion columns do not
// match 6 x joint count, and ErrHierarchy if the hierarchy has zero or
// multiple roots, a dangling or duplicate name, or a cycle.
func New(hierarchy []JointDesc, channels []string, motion *mat.Dense) (*Skeleton, error) {
	if len(hierarchy) == 0 {
		return nil, fmt.Errorf("%w: empty hierarchy", ErrHierarchy)
	}
	if err := validateChannels(channels, len(hierarchy)); err != nil {
		return nil, err
	}
	frames, cols := motion.Dims()
	if cols != len(channels) {
		return nil, fmt.Errorf("%w: motion has %d columns, want %d",
			ErrShapeMismatch, cols, len(channels))
	}

	index := make(map[string]int, len(hierarchy))
	for i, jd := range hierarchy {
		if _, dup := index[jd.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate joint %q", ErrHierarchy, jd.Name)
		}
		index[jd.Name] = i
	}

	joints := make([]Joint, len(hierarchy))
	root := -1
	for i, jd := range hierarchy {
		parent := -1
		if jd.Parent == "" {
			if root >= 0 {
				return nil, fmt.Errorf("%w: multiple roots (%q and %q)",
					ErrHierarchy, joints[root].Name, jd.Name)
			}
			root = i
		} else {
			p, ok := index[jd.Parent]
			if !ok {
				return nil, fmt.Errorf("%w: joint %q references undefined parent %q",
					ErrHierarchy, jd.Name, jd.Parent)
			}
			parent = p
		}
		joints[i] = Joint{Name: jd.Name, Parent: parent, Offset: jd.Offset}
	}
	if root < 0 {
		return nil, fmt.Errorf("%w: no root joint", ErrHierarchy)
	}

	// Bounded walk from every joint toward the root: more than
	// len(joints) parent hops without reaching it means a cycle.
	for i := range joints {
		j, hops := i, 0
		for joints[j].Parent >= 0 {
			j = joints[j].Parent
			hops++
			if hops > len(joints) {
				return nil, fmt.Errorf("%w: cycle reachable from joint %q",
					ErrHierarchy, joints[i].Name)
			}
		}
		if j != root {
			return nil, fmt.Errorf("%w: joint %q does not reach the root",
				ErrHierarchy, joints[i].Name)
		}
	}

	s := &Skeleton{
		joints:   joints,
		index:    index,
		root:     root,
		channels: append([]string(nil), channels...),
		motion:   mat.DenseCopyOf(motion),
		frames:   frames,
	}
	s.rebuildChildren()
	return s, nil
}

// rebuildChildren recomputes the children adjacency from parent links.
func (s *Skeleton) rebuildChildren() {
	s.children = make(map[int][]int, len(s.joints))
	for i := range s.joints {
		p := s.joints[i].Parent
		if p >= 0 {
			s.children[p] = append(s.children[p], i)
		}
	}
}

// Root returns the name of the current root joint.
func (s *Skeleton) Root() string { return s.joints[s.root].Name }

// JointCount returns the number of joints in the hierarchy.
func (s *Skeleton) JointCount() int { return len(s.joints) }

// FrameCount returns the number of animation frames.
func (s *Skeleton) FrameCount() int { return s.frames }

// Channels returns a copy of the channel-name list.
func (s *Skeleton) Channels() []string {
	return append([]string(nil), s.channels...)
}

// Joints returns the hierarchy as joint descriptors in declaration
// order, reflecting any re-rooting applied so far.
func (s *Skeleton) Joints() []JointDesc {
	out := make([]JointDesc, len(s.joints))
	for i, j := range s.joints {
		parent := ""
		if j.Parent >= 0 {
			parent = s.joints[j.Parent].Name
		}
		out[i] = JointDesc{Name: j.Name, Parent: parent, Offset: j.Offset}
	}
	return out
}

// Parent returns the parent name of the named joint, or the empty
// string for the root.
func (s *Skeleton) Parent(name string) (string, error) {
	j, err := s.lookup(name)
	if err != nil {
		return "", err
	}
	if s.joints[j].Parent < 0 {
		return "", nil
	}
	return s.joints[s.joints[j].Parent].Name, nil
}

// Children returns the names of the named joint's children in joint
// declaration order.
func (s *Skeleton) Children(name string) ([]string, error) {
	j, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	kids := s.children[j]
	out := make([]string, len(kids))
	for i, c := range kids {
		out[i] = s.joints[c].Name
	}
	return out, nil
}

// Offset returns the rest-pose offset of the named joint relative to
// its parent.
func (s *Skeleton) Offset(name string) (math.Vec3, error) {
	j, err := s.lookup(name)
	if err != nil {
		return math.Vec3{}, err
	}
	return s.joints[j].Offset, nil
}

// Motion returns a copy of the motion matrix in its current transform
// state.
func (s *Skeleton) Motion() *mat.Dense {
	return mat.DenseCopyOf(s.motion)
}

// ComputeRelativePositions re-expresses every joint's position triple
// relative to the current root, for every frame, in place. The root's
// own position becomes the zero vector at every frame. Rotation columns
// are untouched. Not reversible: callers that need the world-space
// positions back must snapshot the motion matrix first.
func (s *Skeleton) ComputeRelativePositions() {
	s.anchorTo(s.root)
}

// anchorTo subtracts joint r's position triple from every joint's
// position triple at every frame. Rotation columns are never written.
func (s *Skeleton) anchorTo(r int) {
	base := posCol(r)
	rm := s.motion.RawMatrix()
	for f := 0; f < rm.Rows; f++ {
		row := rm.Data[f*rm.Stride : f*rm.Stride+rm.Cols]
		rx, ry, rz := row[base], row[base+1], row[base+2]
		for c := 0; c < rm.Cols; c += ChannelsPerJoint {
			row[c] -= rx
			row[c+1] -= ry
			row[c+2] -= rz
		}
	}
}

// SetNewRoot makes the named joint the hierarchy's parentless anchor,
// updating both the tree and the motion data so all positions remain a
// consistent skeleton under the new anchor.
//
// Every parent/child edge on the path from the current root to the
// target is reversed, and the reversed edges' rest offsets are negated.
// Joints off that path are untouched. The position columns are then
// re-anchored so the new root's position is the zero vector at every
// frame. Rotation channels keep their original per-joint convention;
// they are not re-expressed in the new parent's frame.
//
// Returns ErrJointNotFound for an unknown name, before any mutation.
// Re-rooting onto the current root is a no-op.
func (s *Skeleton) SetNewRoot(name string) error {
	target, ok := s.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrJointNotFound, name)
	}
	if target == s.root {
		return nil
	}

	// Ancestor chain target -> ... -> current root. The tree has a
	// unique path between any two nodes, so this is the re-rooting path.
	path := []int{target}
	for j := s.joints[target].Parent; j >= 0; j = s.joints[j].Parent {
		path = append(path, j)
	}

	// Reverse each edge walking from the root end. For edge (p, c) the
	// old parent p becomes the child of c, carrying the negation of c's
	// old offset ("c relative to p" becomes "p relative to c"). Each
	// offset is consumed before the following step overwrites it.
	for i := len(path) - 1; i > 0; i-- {
		p, c := path[i], path[i-1]
		old := s.joints[c].Offset
		s.joints[p].Parent = c
		s.joints[p].Offset = old.Neg()
	}
	s.joints[target].Parent = -1
	// The root's pose comes entirely from its position channels, which
	// anchorTo zeroes below; a leftover rest offset would be dead data.
	s.joints[target].Offset = math.Vec3{}
	s.root = target

	s.rebuildChildren()
	s.anchorTo(target)
	return nil
}

// JointPosition returns the position triple stored for the named joint
// at the given frame, in whatever transform state the motion matrix is
// currently in (world-space or root-relative, pre- or post-re-rooting).
func (s *Skeleton) JointPosition(name string, frame int) (math.Vec3, error) {
	j, err := s.lookup(name)
	if err != nil {
		return math.Vec3{}, err
	}
	if err := s.checkFrame(frame); err != nil {
		return math.Vec3{}, err
	}
	return s.triple(frame, posCol(j)), nil
}

// JointRotation returns the rotation triple stored for the named joint
// at the given frame.
func (s *Skeleton) JointRotation(name string, frame int) (math.Vec3, error) {
	j, err := s.lookup(name)
	if err != nil {
		return math.Vec3{}, err
	}
	if err := s.checkFrame(frame); err != nil {
		return math.Vec3{}, err
	}
	return s.triple(frame, rotCol(j)), nil
}

// SamplePosition returns the named joint's position at a fractional
// frame index, linearly interpolated between the two adjacent frames.
// The index must lie in [0, FrameCount-1].
func (s *Skeleton) SamplePosition(name string, frame float64) (math.Vec3, error) {
	j, err := s.lookup(name)
	if err != nil {
		return math.Vec3{}, err
	}
	return s.sample(frame, posCol(j))
}

// SampleRotation returns the named joint's rotation at a fractional
// frame index, linearly interpolated between the two adjacent frames.
func (s *Skeleton) SampleRotation(name string, frame float64) (math.Vec3, error) {
	j, err := s.lookup(name)
	if err != nil {
		return math.Vec3{}, err
	}
	return s.sample(frame, rotCol(j))
}

func (s *Skeleton) sample(frame float64, col int) (math.Vec3, error) {
	if frame != frame || frame < 0 || frame > float64(s.frames-1) {
		return math.Vec3{}, fmt.Errorf("%w: sample frame %v, have %d frames",
			ErrFrameIndex, frame, s.frames)
	}
	f0 := int(frame)
	f1 := f0 + 1
	if f1 > s.frames-1 {
		f1 = s.frames - 1
	}
	t := frame - float64(f0)
	return s.triple(f0, col).Lerp(s.triple(f1, col), t), nil
}

func (s *Skeleton) lookup(name string) (int, error) {
	j, ok := s.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrJointNotFound, name)
	}
	return j, nil
}

func (s *Skeleton) checkFrame(frame int) error {
	if frame < 0 || frame >= s.frames {
		return fmt.Errorf("%w: frame %d, have %d frames", ErrFrameIndex, frame, s.frames)
	}
	return nil
}

func (s *Skeleton) triple(frame, col int) math.Vec3 {
	return math.Vec3{
		X: s.motion.At(frame, col),
		Y: s.motion.At(frame, col+1),
		Z: s.motion.At(frame, col+2),
	}
}
