package signal

import (
	"math"
	"sort"

	"github.com/banshee-data/sitstand.report/internal/imu"
)

// Deduplicate checks the clock for non-positive steps and, if any exist,
// keeps the first sample at each distinct time and sorts the rows
// ascending. The returned series never aliases s.
//
// Times are compared as given. Rebuilding them from summed deltas only adds
// rounding noise that splits exact repeats.
func Deduplicate(s imu.Series) imu.Series {
	n := s.Len()
	monotonic := true
	for i := 1; i < n; i++ {
		if s.Time[i]-s.Time[i-1] <= 0 {
			monotonic = false
			break
		}
	}
	if monotonic {
		out := imu.Series{
			Time:  make([]float64, n),
			Accel: make([][3]float64, n),
			Gyro:  make([][3]float64, n),
		}
		copy(out.Time, s.Time)
		copy(out.Accel, s.Accel)
		copy(out.Gyro, s.Gyro)
		return out
	}

	order := make([]int, 0, n)
	seen := make(map[float64]struct{}, n)
	for i, t := range s.Time {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool { return s.Time[order[a]] < s.Time[order[b]] })

	out := imu.Series{
		Time:  make([]float64, len(order)),
		Accel: make([][3]float64, len(order)),
		Gyro:  make([][3]float64, len(order)),
	}
	for j, i := range order {
		out.Time[j] = s.Time[i]
		out.Accel[j] = s.Accel[i]
		out.Gyro[j] = s.Gyro[i]
	}
	return out
}

// UniformGrid returns start, start+dt, ... strictly below stop.
func UniformGrid(start, stop, dt float64) []float64 {
	if dt <= 0 || !(stop > start) {
		return []float64{}
	}
	n := int(math.Ceil((stop - start) / dt))
	grid := make([]float64, n)
	for i := range grid {
		grid[i] = start + float64(i)*dt
	}
	return grid
}
