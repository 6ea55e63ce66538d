// Package capture defines the decoded-capture document exchanged with
// external motion loaders: a joint hierarchy, a channel-name list, and
// a frames-by-channels motion matrix. Documents are read and written as
// YAML or JSON; raw capture formats (BVH and friends) are decoded by
// external tooling before they reach this package.
package capture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/motionkit/mocap/pkg/math"
	"github.com/motionkit/mocap/pkg/skeleton"
)

var (
	// ErrNoFrames indicates a document whose motion matrix has no rows.
	ErrNoFrames = errors.New("capture has no motion frames")

	// ErrRaggedMotion indicates motion rows of differing lengths.
	ErrRaggedMotion = errors.New("capture motion rows have differing lengths")
)

// JointSpec is one joint entry of a capture document. An empty or
// absent parent marks the root.
type JointSpec struct {
	Name   string     `yaml:"name" json:"name"`
	Parent string     `yaml:"parent,omitempty" json:"parent,omitempty"`
	Offset [3]float64 `yaml:"offset,flow" json:"offset"`
}

// Document is a decoded capture: the contract shape supplied by
// external loaders and consumed by the skeleton model.
type Document struct {
	Hierarchy []JointSpec `yaml:"hierarchy" json:"hierarchy"`
	Channels  []string    `yaml:"channels,flow" json:"channels"`
	Motion    [][]float64 `yaml:"motion" json:"motion"`
}

// Decode reads a YAML capture document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding capture: %w", err)
	}
	return &doc, nil
}

// DecodeFile reads a capture document from path, picking JSON or YAML
// by file extension (.json is JSON, everything else YAML).
func DecodeFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading capture file: %w", err)
	}
	var doc Document
	if isJSON(path) {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return &doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &doc, nil
}

// Encode writes the document as YAML.
func (d *Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding capture: %w", err)
	}
	return nil
}

// EncodeFile writes the document to path, picking JSON or YAML by file
// extension the same way DecodeFile does.
func (d *Document) EncodeFile(path string) error {
	var data []byte
	var err error
	if isJSON(path) {
		data, err = json.MarshalIndent(d, "", "  ")
	} else {
		data, err = yaml.Marshal(d)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Skeleton builds the core skeleton model from the document. Shape and
// hierarchy validation beyond row raggedness is delegated to
// skeleton.New.
func (d *Document) Skeleton() (*skeleton.Skeleton, error) {
	if len(d.Motion) == 0 {
		return nil, ErrNoFrames
	}
	cols := len(d.Motion[0])
	if cols == 0 {
		return nil, fmt.Errorf("%w: motion rows are empty", skeleton.ErrShapeMismatch)
	}
	flat := make([]float64, 0, len(d.Motion)*cols)
	for i, row := range d.Motion {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d values, row 0 has %d",
				ErrRaggedMotion, i, len(row), cols)
		}
		flat = append(flat, row...)
	}

	hierarchy := make([]skeleton.JointDesc, len(d.Hierarchy))
	for i, js := range d.Hierarchy {
		hierarchy[i] = skeleton.JointDesc{
			Name:   js.Name,
			Parent: js.Parent,
			Offset: math.Vec3{X: js.Offset[0], Y: js.Offset[1], Z: js.Offset[2]},
		}
	}

	return skeleton.New(hierarchy, d.Channels, mat.NewDense(len(d.Motion), cols, flat))
}

// FromSkeleton snapshots a skeleton model back into document form,
// reflecting its current hierarchy and transform state.
func FromSkeleton(s *skeleton.Skeleton) *Document {
	joints := s.Joints()
	hierarchy := make([]JointSpec, len(joints))
	for i, jd := range joints {
		hierarchy[i] = JointSpec{
			Name:   jd.Name,
			Parent: jd.Parent,
			Offset: [3]float64{jd.Offset.X, jd.Offset.Y, jd.Offset.Z},
		}
	}

	m := s.Motion()
	rows, _ := m.Dims()
	motion := make([][]float64, rows)
	for f := 0; f < rows; f++ {
		motion[f] = m.RawRowView(f)
	}

	return &Document{
		Hierarchy: hierarchy,
		Channels:  s.Channels(),
		Motion:    motion,
	}
}
