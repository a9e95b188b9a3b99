package segment

// Cycle anchors one stand-sit repetition by five indices into the aligned
// pitch signal.
type Cycle struct {
	Valley1 int `json:"valley1"`
	Peak1   int `json:"peak1"`
	Valley2 int `json:"valley2"`
	Peak2   int `json:"peak2"`
	Valley3 int `json:"valley3"`
}

// Ordered reports whether the indices are strictly increasing.
func (c Cycle) Ordered() bool {
	return c.Valley1 < c.Peak1 && c.Peak1 < c.Valley2 && c.Valley2 < c.Peak2 && c.Peak2 < c.Valley3
}

// Stitch walks the ascending valley and peak lists with one cursor each,
// emitting a Cycle for every valley-peak-valley-peak-valley run. The next
// search resumes from the closing valley and the second peak, so the
// closing valley of one cycle opens the next. It stops as soon as either
// list runs out.
func Stitch(peaks, valleys []int) []Cycle {
	var cycles []Cycle
	iv, ip := 0, 0
	for iv+2 < len(valleys) && ip+1 < len(peaks) {
		v1 := valleys[iv]

		ip1 := after(peaks, ip, v1)
		if ip1 == len(peaks) {
			break
		}
		iv2 := after(valleys, iv+1, peaks[ip1])
		if iv2 == len(valleys) {
			break
		}
		ip2 := after(peaks, ip1+1, valleys[iv2])
		if ip2 == len(peaks) {
			break
		}
		iv3 := after(valleys, iv2+1, peaks[ip2])
		if iv3 == len(valleys) {
			break
		}

		cycles = append(cycles, Cycle{
			Valley1: v1,
			Peak1:   peaks[ip1],
			Valley2: valleys[iv2],
			Peak2:   peaks[ip2],
			Valley3: valleys[iv3],
		})
		iv, ip = iv3, ip2
	}
	return cycles
}

// after returns the first position at or beyond from whose value exceeds
// bound, or len(list).
func after(list []int, from, bound int) int {
	i := from
	for i < len(list) && list[i] <= bound {
		i++
	}
	return i
}
