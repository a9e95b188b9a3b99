// Package norms classifies a 30-second sit-to-stand repetition count
// against age and sex reference values for adults aged 60 to 94.
package norms

import (
	"sort"
	"strings"
)

// Sex selects the reference column. Anything other than Female is scored
// against the male column.
type Sex string

const (
	Female Sex = "F"
	Male   Sex = "M"
)

// ParseSex maps "F"/"M" (any case, surrounding space ignored) to a Sex.
func ParseSex(s string) (Sex, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "F":
		return Female, true
	case "M":
		return Male, true
	}
	return "", false
}

// Classification labels.
const (
	BelowAverage  = "Below average"
	Average       = "Average"
	AboveAverage  = "Above average"
	OutsideTable  = "age outside table range"
	bracketWidth  = 5
	firstBracket  = 60
	lastBracketTo = 94
)

// Norm is the reference mean and standard deviation of repetitions.
type Norm struct {
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
}

// Bracket is an inclusive age range.
type Bracket struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type key struct {
	sex  Sex
	from int
}

// table is built once and only read afterwards.
var table = map[key]Norm{
	{Female, 60}: {15.4, 4.3},
	{Female, 65}: {13.5, 4.3},
	{Female, 70}: {12.9, 3.7},
	{Female, 75}: {12.5, 3.9},
	{Female, 80}: {10.3, 4.0},
	{Female, 85}: {8.0, 5.1},
	{Female, 90}: {6.0, 4.0},

	{Male, 60}: {16.4, 3.3},
	{Male, 65}: {15.2, 4.5},
	{Male, 70}: {14.5, 4.2},
	{Male, 75}: {14.0, 4.3},
	{Male, 80}: {12.4, 3.9},
	{Male, 85}: {10.3, 4.0},
	{Male, 90}: {9.7, 6.8},
}

// Lookup returns the reference values for sex and age.
func Lookup(sex Sex, age int) (Norm, Bracket, bool) {
	if age < firstBracket || age > lastBracketTo {
		return Norm{}, Bracket{}, false
	}
	if sex != Female {
		sex = Male
	}
	from := firstBracket + (age-firstBracket)/bracketWidth*bracketWidth
	n, ok := table[key{sex, from}]
	return n, Bracket{From: from, To: from + bracketWidth - 1}, ok
}

// Classify scores reps against the reference for sex and age. Counts
// below mean-sd are below average, above mean+sd above average.
func Classify(sex Sex, age, reps int) string {
	n, _, ok := Lookup(sex, age)
	if !ok {
		return OutsideTable
	}
	r := float64(reps)
	switch {
	case r < n.Mean-n.SD:
		return BelowAverage
	case r > n.Mean+n.SD:
		return AboveAverage
	default:
		return Average
	}
}

// Entry is one row of the reference table.
type Entry struct {
	Sex     Sex     `json:"sex"`
	Bracket Bracket `json:"bracket"`
	Norm
}

// Table returns the reference rows ordered by sex then age.
func Table() []Entry {
	out := make([]Entry, 0, len(table))
	for k, n := range table {
		out = append(out, Entry{Sex: k.sex, Bracket: Bracket{From: k.from, To: k.from + bracketWidth - 1}, Norm: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sex != out[j].Sex {
			return out[i].Sex < out[j].Sex
		}
		return out[i].Bracket.From < out[j].Bracket.From
	})
	return out
}
