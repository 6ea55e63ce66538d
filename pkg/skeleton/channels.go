package skeleton

import "fmt"

// ChannelsPerJoint is the number of motion channels each joint owns:
// three position axes followed by three rotation axes.
const ChannelsPerJoint = 6

// channelOrder is the required per-joint channel grouping, matching the
// layout produced by BVH-style loaders.
var channelOrder = [ChannelsPerJoint]string{
	"Xposition", "Yposition", "Zposition",
	"Xrotation", "Yrotation", "Zrotation",
}

// validateChannels checks that the channel list has exactly six entries
// per joint and that every group follows the position-then-rotation
// axis order. The column lookup derived from the joint index depends on
// this grouping, so a misordered list is rejected instead of silently
// producing wrong columns.
func validateChannels(channels []string, jointCount int) error {
	want := jointCount * ChannelsPerJoint
	if len(channels) != want {
		return fmt.Errorf("%w: %d channels for %d joints, want %d",
			ErrShapeMismatch, len(channels), jointCount, want)
	}
	for i, name := range channels {
		if name != channelOrder[i%ChannelsPerJoint] {
			return fmt.Errorf("%w: channel %d is %q, want %q",
				ErrShapeMismatch, i, name, channelOrder[i%ChannelsPerJoint])
		}
	}
	return nil
}

// posCol returns the column of the first position channel of joint j.
func posCol(j int) int { return j * ChannelsPerJoint }

// rotCol returns the column of the first rotation channel of joint j.
func rotCol(j int) int { return j*ChannelsPerJoint + 3 }
