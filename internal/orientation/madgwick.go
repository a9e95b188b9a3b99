// Package orientation fuses accelerometer and gyroscope streams into an
// attitude quaternion sequence and extracts the sagittal tilt angle used to
// segment sit-to-stand repetitions.
package orientation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// DefaultGain is the gradient step for IMU-only (no magnetometer) updates.
const DefaultGain = 0.033

// Madgwick is a gradient-descent orientation filter. The quaternion is
// Real=w, Imag=x, Jmag=y, Kmag=z and rotates the sensor frame into the
// earth frame.
type Madgwick struct {
	Gain         float64
	SamplePeriod float64 // seconds
}

// NewMadgwick returns a filter for samples arriving at fs Hz.
func NewMadgwick(gain, fs float64) *Madgwick {
	return &Madgwick{Gain: gain, SamplePeriod: 1 / fs}
}

// Update advances q by one sample. gyr is in rad/s, acc in any unit (only
// its direction is used). A zero gyroscope reading leaves q unchanged.
func (m *Madgwick) Update(q quat.Number, gyr, acc [3]float64) quat.Number {
	if norm3(gyr) == 0 {
		return q
	}
	qDot := quat.Scale(0.5, quat.Mul(q, quat.Number{Imag: gyr[0], Jmag: gyr[1], Kmag: gyr[2]}))

	if an := norm3(acc); an > 0 {
		ax, ay, az := acc[0]/an, acc[1]/an, acc[2]/an
		qn := unit(q)
		qw, qx, qy, qz := qn.Real, qn.Imag, qn.Jmag, qn.Kmag

		// Objective: estimated gravity direction minus measured.
		f0 := 2*(qx*qz-qw*qy) - ax
		f1 := 2*(qw*qx+qy*qz) - ay
		f2 := 2*(0.5-qx*qx-qy*qy) - az

		// Jacobian transposed times f.
		grad := quat.Number{
			Real: -2*qy*f0 + 2*qx*f1,
			Imag: 2*qz*f0 + 2*qw*f1 - 4*qx*f2,
			Jmag: -2*qw*f0 + 2*qz*f1 - 4*qy*f2,
			Kmag: 2*qx*f0 + 2*qy*f1,
		}
		if gn := quat.Abs(grad); gn > 0 {
			qDot = quat.Sub(qDot, quat.Scale(m.Gain/gn, grad))
		}
	}

	return unit(quat.Add(q, quat.Scale(m.SamplePeriod, qDot)))
}

// Run filters a whole recording. The first quaternion is the tilt implied by
// the first accelerometer sample; each later one is Update applied to its
// predecessor.
func (m *Madgwick) Run(acc, gyr [][3]float64) []quat.Number {
	n := min(len(acc), len(gyr))
	qs := make([]quat.Number, n)
	if n == 0 {
		return qs
	}
	qs[0] = AccelToQuat(acc[0])
	for i := 1; i < n; i++ {
		qs[i] = m.Update(qs[i-1], gyr[i], acc[i])
	}
	return qs
}

// AccelToQuat returns the roll/pitch attitude that aligns the measured
// gravity vector with the earth z axis, with zero heading. A zero vector
// yields the identity.
func AccelToQuat(acc [3]float64) quat.Number {
	an := norm3(acc)
	if an == 0 {
		return quat.Number{Real: 1}
	}
	ax, ay, az := acc[0]/an, acc[1]/an, acc[2]/an
	roll := math.Atan2(ay, az)
	pitch := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	cr, sr := math.Cos(roll/2), math.Sin(roll/2)
	cp, sp := math.Cos(pitch/2), math.Sin(pitch/2)
	return quat.Number{
		Real: cr * cp,
		Imag: sr * cp,
		Jmag: cr * sp,
		Kmag: -sr * sp,
	}
}

func norm3(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func unit(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return q
	}
	return quat.Scale(1/n, q)
}
