package pose

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrShortPoint is returned when a landmark has fewer than three coordinates.
var ErrShortPoint = errors.New("pose: landmark needs 3 coordinates")

// UnmarshalJSON reads a landmark written as [x, y, z]. Trailing components
// such as visibility are ignored.
func (p *JointPoint) UnmarshalJSON(data []byte) error {
	var c []float64
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("pose: landmark: %w", err)
	}
	if len(c) < 3 {
		return fmt.Errorf("%w, got %d", ErrShortPoint, len(c))
	}
	*p = JointPoint{X: c[0], Y: c[1], Z: c[2]}
	return nil
}

func (p JointPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{p.X, p.Y, p.Z})
}

// frameRecord is the object form written by the estimation producer.
type frameRecord struct {
	Frame int          `json:"frame"`
	Pose  []JointPoint `json:"pose"`
	Hands []HandFrame  `json:"hands"`
}

// UnmarshalJSON accepts either a bare landmark array or a frame record with
// pose and hands.
func (f *PoseFrame) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var body []JointPoint
		if err := json.Unmarshal(data, &body); err != nil {
			return err
		}
		*f = PoseFrame{Body: body}
		return nil
	}

	var rec frameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("pose: frame: %w", err)
	}
	out := PoseFrame{Index: rec.Frame, Body: rec.Pose}
	for i := 0; i < len(rec.Hands) && i < len(out.Hands); i++ {
		if len(rec.Hands[i]) > 0 {
			out.Hands[i] = rec.Hands[i]
		}
	}
	*f = out
	return nil
}

func (f PoseFrame) MarshalJSON() ([]byte, error) {
	n := 0
	for i, h := range f.Hands {
		if h != nil {
			n = i + 1
		}
	}
	rec := frameRecord{Frame: f.Index, Pose: f.Body, Hands: append([]HandFrame{}, f.Hands[:n]...)}
	if rec.Pose == nil {
		rec.Pose = []JointPoint{}
	}
	return json.Marshal(rec)
}

// Decode parses one pose file body: a JSON array of frames.
func Decode(name string, r io.Reader) (PoseFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return PoseFile{}, fmt.Errorf("pose: read %s: %w", name, err)
	}
	var frames []PoseFrame
	if err := json.Unmarshal(data, &frames); err != nil {
		return PoseFile{}, fmt.Errorf("pose: decode %s: %w", name, err)
	}
	for i := range frames {
		if frames[i].Index == 0 {
			frames[i].Index = i
		}
	}
	return PoseFile{Name: name, Frames: frames}, nil
}
