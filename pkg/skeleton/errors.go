package skeleton

import "errors"

var (
	// ErrShapeMismatch indicates that the motion matrix or channel list
	// dimensions are inconsistent with the declared joint count.
	ErrShapeMismatch = errors.New("motion data shape mismatch")

	// ErrHierarchy indicates an invalid joint hierarchy: zero or multiple
	// roots, a dangling parent reference, or a cycle.
	ErrHierarchy = errors.New("invalid joint hierarchy")

	// ErrJointNotFound indicates an unknown joint name.
	ErrJointNotFound = errors.New("joint not found")

	// ErrFrameIndex indicates a frame index outside [0, FrameCount).
	ErrFrameIndex = errors.New("frame index out of range")
)
