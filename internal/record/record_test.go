package record

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatReal(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2, "2.0"},
		{0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{0.15, "0.15"},
		{-1.25, "-1.25"},
		{0.30000000000000004, "0.30000000000000004"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{-2.5e-7, "-2.5e-07"},
		{123456789, "123456789.0"},
		{1e15, "1000000000000000.0"},
		{1e16, "1e+16"},
		{1.5e20, "1.5e+20"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatReal(tt.in), "FormatReal(%v)", tt.in)
	}
}

func TestRecord_String(t *testing.T) {
	r := Record{Effect: 0.5, SE: 2, N: 10, StudyID: "3"}
	assert.Equal(t, []string{"0.5", "2.0", "10", "3"}, r.Fields())
	assert.Equal(t, "0.5,2.0,10,3", r.String())
}
