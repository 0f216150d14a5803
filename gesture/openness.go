package gesture

import (
	"errors"
	"fmt"
	"math"
)

// Hand landmark indices
const (
	Wrist     = 0
	MiddleMCP = 9
	IndexTip  = 8
	MiddleTip = 12
	RingTip   = 16
	PinkyTip  = 20

	LandmarkCount = 21
)

// Ratio of mean fingertip distance to palm length at a fist and at an open palm
const (
	FistRatio = 0.7
	OpenRatio = 2.0
)

var (
	ErrNoHand         = errors.New("no hand landmarks")
	ErrDegenerateHand = errors.New("degenerate palm")
)

var fingertips = [...]int{IndexTip, MiddleTip, RingTip, PinkyTip}

// Landmark is one tracked hand point. World-space landmarks keep the ratio
// independent of camera distance, normalized image landmarks work too.
type Landmark struct {
	X, Y, Z float64
}

func dist(a, b Landmark) float64 {
	return math.Sqrt((a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y) + (a.Z-b.Z)*(a.Z-b.Z))
}

// Openness maps a hand pose to [0,1]: 0 is a closed fist, 1 an open palm.
// The palm length (wrist to middle knuckle) normalizes for hand size.
func Openness(landmarks []Landmark) (float64, error) {
	if len(landmarks) == 0 {
		return 0, ErrNoHand
	}
	if len(landmarks) < LandmarkCount {
		return 0, fmt.Errorf("%w: got %d landmarks, need %d", ErrNoHand, len(landmarks), LandmarkCount)
	}

	wrist := landmarks[Wrist]
	palm := dist(landmarks[MiddleMCP], wrist)
	if palm == 0 || math.IsNaN(palm) || math.IsInf(palm, 0) {
		return 0, ErrDegenerateHand
	}

	total := 0.0
	for _, idx := range fingertips {
		total += dist(landmarks[idx], wrist)
	}
	ratio := total / float64(len(fingertips)) / palm

	o := (ratio - FistRatio) / (OpenRatio - FistRatio)
	return math.Min(math.Max(o, 0), 1), nil
}

// Pose builds a synthetic hand whose Openness is o. Wrist at the origin,
// unit palm along +Y and fingertips fanned at the matching ratio.
func Pose(o float64) []Landmark {
	o = math.Min(math.Max(o, 0), 1)
	ratio := FistRatio + o*(OpenRatio-FistRatio)

	hand := make([]Landmark, LandmarkCount)
	hand[MiddleMCP] = Landmark{Y: 1}
	for i, idx := range fingertips {
		a := (float64(i) - 1.5) * 0.25
		hand[idx] = Landmark{X: math.Sin(a) * ratio, Y: math.Cos(a) * ratio}
	}
	return hand
}
