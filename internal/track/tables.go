package track

import "fmt"

// CountScores scores the number of cells occupying one detection.
// Frame and Detection are 1-based as supplied by the host; Scores[k]
// is the score of the detection holding k cells.
type CountScores struct {
	Frame     int
	Detection int
	Scores    []float64
}

// MigrationScores scores a possible migration between a detection in
// Frame and a detection in Frame+1. Scores[0] is the score of the
// migration not happening, Scores[1] of it happening.
type MigrationScores struct {
	Frame  int
	From   int
	To     int
	Scores [2]float64
}

// MitosisScores scores a possible division of Parent in Frame into
// Child1 and Child2 in Frame+1.
type MitosisScores struct {
	Frame  int
	Parent int
	Child1 int
	Child2 int
	Scores [2]float64
}

// EventScores scores a per-detection event (apoptosis, appearance,
// disappearance) for the detection Detection in Frame.
type EventScores struct {
	Frame     int
	Detection int
	Scores    [2]float64
}

// Problem is the full input of the track linker: the trellis shape and
// every scored event candidate. All frame and detection indices are
// 1-based.
type Problem struct {
	// Detections holds the number of detections in each frame; its
	// length is the number of frames.
	Detections []int

	Counts         []CountScores
	Migrations     []MigrationScores
	Mitoses        []MitosisScores
	Apoptoses      []EventScores
	Appearances    []EventScores
	Disappearances []EventScores
}

// NumFrames returns the number of frames in the problem.
func (p *Problem) NumFrames() int { return len(p.Detections) }

// validate checks every index in the problem against the trellis
// shape before anything is built.
func (p *Problem) validate() error {
	numT := p.NumFrames()
	if numT == 0 {
		return fmt.Errorf("track: problem has no frames")
	}
	for t, n := range p.Detections {
		if n < 0 {
			return fmt.Errorf("track: frame %d has a negative detection count", t+1)
		}
	}

	det := func(frame, d int, what string) error {
		if frame < 1 || frame > numT {
			return fmt.Errorf("track: %s frame %d out of range 1..%d", what, frame, numT)
		}
		if d < 1 || d > p.Detections[frame-1] {
			return fmt.Errorf("track: %s detection %d out of range 1..%d in frame %d",
				what, d, p.Detections[frame-1], frame)
		}
		return nil
	}

	counted := make(map[[2]int]bool)
	for _, c := range p.Counts {
		if err := det(c.Frame, c.Detection, "count"); err != nil {
			return err
		}
		if len(c.Scores) < 2 {
			return fmt.Errorf("track: count for frame %d detection %d needs at least 2 scores", c.Frame, c.Detection)
		}
		counted[[2]int{c.Frame, c.Detection}] = true
	}
	for t, n := range p.Detections {
		for d := 1; d <= n; d++ {
			if !counted[[2]int{t + 1, d}] {
				return fmt.Errorf("track: no count scores for frame %d detection %d", t+1, d)
			}
		}
	}

	for _, m := range p.Migrations {
		if m.Frame >= numT {
			return fmt.Errorf("track: migration from frame %d has no next frame", m.Frame)
		}
		if err := det(m.Frame, m.From, "migration start"); err != nil {
			return err
		}
		if err := det(m.Frame+1, m.To, "migration end"); err != nil {
			return err
		}
	}

	for _, m := range p.Mitoses {
		if m.Frame >= numT {
			return fmt.Errorf("track: mitosis in frame %d has no next frame", m.Frame)
		}
		if err := det(m.Frame, m.Parent, "mitosis parent"); err != nil {
			return err
		}
		if err := det(m.Frame+1, m.Child1, "mitosis child"); err != nil {
			return err
		}
		if err := det(m.Frame+1, m.Child2, "mitosis child"); err != nil {
			return err
		}
	}

	for _, a := range p.Apoptoses {
		if a.Frame >= numT {
			return fmt.Errorf("track: apoptosis in the last frame %d has no dead state to enter", a.Frame)
		}
		if err := det(a.Frame, a.Detection, "apoptosis"); err != nil {
			return err
		}
	}
	for _, a := range p.Appearances {
		if a.Frame < 2 {
			return fmt.Errorf("track: appearance in frame %d; cells cannot appear in the first frame", a.Frame)
		}
		if err := det(a.Frame, a.Detection, "appearance"); err != nil {
			return err
		}
	}
	for _, a := range p.Disappearances {
		if a.Frame >= numT {
			return fmt.Errorf("track: disappearance in the last frame %d has no idle state to enter", a.Frame)
		}
		if err := det(a.Frame, a.Detection, "disappearance"); err != nil {
			return err
		}
	}
	return nil
}
