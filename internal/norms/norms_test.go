package norms

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		sex  Sex
		age  int
		reps int
		want string
	}{
		{"male 70 below", Male, 70, 10, BelowAverage},
		{"male 70 above", Male, 70, 19, AboveAverage},
		{"male 70 average", Male, 70, 14, Average},
		{"male 70 at lower threshold", Male, 70, 11, Average},
		{"male 70 at upper threshold", Male, 70, 18, Average},
		{"age 95 outside", Male, 95, 30, OutsideTable},
		{"age 59 outside", Female, 59, 0, OutsideTable},
		{"female 60 average", Female, 60, 15, Average},
		{"female 94 above", Female, 94, 11, AboveAverage},
		{"female 85 below", Female, 85, 2, BelowAverage},
		{"unknown sex scored as male", Sex("X"), 70, 10, BelowAverage},
		{"zero reps", Male, 64, 0, BelowAverage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.sex, tt.age, tt.reps))
		})
	}
}

func TestLookup_Brackets(t *testing.T) {
	for age := 60; age <= 94; age++ {
		n, b, ok := Lookup(Female, age)
		require.True(t, ok, "age %d", age)
		assert.LessOrEqual(t, b.From, age)
		assert.GreaterOrEqual(t, b.To, age)
		assert.Equal(t, 4, b.To-b.From)
		assert.Positive(t, n.Mean)
	}

	n, b, ok := Lookup(Male, 72)
	require.True(t, ok)
	assert.Equal(t, Norm{Mean: 14.5, SD: 4.2}, n)
	assert.Equal(t, Bracket{From: 70, To: 74}, b)
}

func TestParseSex(t *testing.T) {
	s, ok := ParseSex(" f ")
	assert.True(t, ok)
	assert.Equal(t, Female, s)

	s, ok = ParseSex("M")
	assert.True(t, ok)
	assert.Equal(t, Male, s)

	_, ok = ParseSex("other")
	assert.False(t, ok)
}

func TestTable(t *testing.T) {
	rows := Table()
	require.Len(t, rows, 14)
	assert.Equal(t, Female, rows[0].Sex)
	assert.Equal(t, 60, rows[0].Bracket.From)
	assert.Equal(t, 15.4, rows[0].Mean)
	assert.Equal(t, Male, rows[13].Sex)
	assert.Equal(t, 90, rows[13].Bracket.From)
	assert.Equal(t, 6.8, rows[13].SD)
}

func TestClassify_ConcurrentReads(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for age := 55; age < 100; age++ {
				_ = Classify(Male, age, i)
				_ = Table()
			}
		}(i)
	}
	wg.Wait()
}
