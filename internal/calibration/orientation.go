package calibration

// Orientation is a telescope's pointing direction in radians.
type Orientation struct {
	BearingRad float64
	DecRad     float64
}

// TelescopeCalibration pairs a bearing and declination Calibration under
// the single Calibrate/CalibrateRelSteps operation the coordinator
// exposes to callers.
type TelescopeCalibration struct {
	Bearing *Calibration
	Dec     *Calibration
}

// NewTelescope builds a TelescopeCalibration for a mount whose two axes
// share (or don't — each is independent) motor geometry.
func NewTelescope(bearingMotorSteps int, bearingGearRatio float64, decMotorSteps int, decGearRatio float64) *TelescopeCalibration {
	return &TelescopeCalibration{
		Bearing: New(bearingMotorSteps, bearingGearRatio),
		Dec:     New(decMotorSteps, decGearRatio),
	}
}

// Orientation derives the current pointing direction from each axis's raw
// position.
func (t *TelescopeCalibration) Orientation(bearingPos, decPos int) Orientation {
	return Orientation{
		BearingRad: t.Bearing.Angle(bearingPos),
		DecRad:     t.Dec.Angle(decPos),
	}
}

// Calibrate sets both axes' offsets so that Orientation(bearingPos,
// decPos) immediately returns (bearingRad, decRad).
func (t *TelescopeCalibration) Calibrate(bearingRad, decRad float64, bearingPos, decPos int) {
	t.Bearing.Calibrate(bearingRad, bearingPos)
	t.Dec.Calibrate(decRad, decPos)
}

// CalibrateRelSteps nudges both axes' offsets by a signed step delta.
func (t *TelescopeCalibration) CalibrateRelSteps(bearingSteps, decSteps int) {
	t.Bearing.CalibrateRelSteps(bearingSteps)
	t.Dec.CalibrateRelSteps(decSteps)
}
