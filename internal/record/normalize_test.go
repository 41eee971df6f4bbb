package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maive-lab/mockcsv/internal/schema"
)

var noStudy = schema.RoleMap{Effect: 0, StdErr: 1, SampleSize: 2, Study: schema.NoColumn}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		row     []string
		roles   schema.RoleMap
		want    Parsed
		wantErr error
	}{
		{
			name:  "plain row",
			row:   []string{"0.5", "0.1", "12"},
			roles: noStudy,
			want:  Parsed{Effect: 0.5, SE: 0.1, N: 12},
		},
		{
			name:  "sample size given as real",
			row:   []string{"1", "2", "10.0"},
			roles: noStudy,
			want:  Parsed{Effect: 1, SE: 2, N: 10},
		},
		{
			name:  "sample size truncates",
			row:   []string{"1", "2", "10.9"},
			roles: noStudy,
			want:  Parsed{Effect: 1, SE: 2, N: 10},
		},
		{
			name:  "cells are trimmed",
			row:   []string{" -0.25 ", "\t0.05", "1e2 "},
			roles: noStudy,
			want:  Parsed{Effect: -0.25, SE: 0.05, N: 100},
		},
		{
			name:  "extra cells are ignored",
			row:   []string{"1", "2", "3", "junk", ""},
			roles: noStudy,
			want:  Parsed{Effect: 1, SE: 2, N: 3},
		},
		{
			name:  "study cell is kept raw",
			row:   []string{"Site, A", "1", "2", "3"},
			roles: schema.RoleMap{Effect: 1, StdErr: 2, SampleSize: 3, Study: 0},
			want:  Parsed{Effect: 1, SE: 2, N: 3, Study: "Site, A", HasStudy: true},
		},
		{
			name:    "short row",
			row:     []string{"1", "2"},
			roles:   noStudy,
			wantErr: ErrShortRow,
		},
		{
			name:  "missing study cell keeps the row",
			row:   []string{"1", "2", "3"},
			roles: schema.RoleMap{Effect: 0, StdErr: 1, SampleSize: 2, Study: 3},
			want:  Parsed{Effect: 1, SE: 2, N: 3, HasStudy: true},
		},
		{
			name:  "large sample size",
			row:   []string{"1", "2", "3000000000"},
			roles: noStudy,
			want:  Parsed{Effect: 1, SE: 2, N: 3000000000},
		},
		{
			name:    "sample size overflows",
			row:     []string{"1", "2", "1e19"},
			roles:   noStudy,
			wantErr: ErrInvalidN,
		},
		{
			name:    "effect not numeric",
			row:     []string{"abc", "2", "3"},
			roles:   noStudy,
			wantErr: ErrInvalidEffect,
		},
		{
			name:    "effect empty",
			row:     []string{"", "2", "3"},
			roles:   noStudy,
			wantErr: ErrInvalidEffect,
		},
		{
			name:    "se not finite",
			row:     []string{"1", "NaN", "3"},
			roles:   noStudy,
			wantErr: ErrInvalidSE,
		},
		{
			name:    "se infinite",
			row:     []string{"1", "inf", "3"},
			roles:   noStudy,
			wantErr: ErrInvalidSE,
		},
		{
			name:    "sample size not numeric",
			row:     []string{"1", "2", "ten"},
			roles:   noStudy,
			wantErr: ErrInvalidN,
		},
		{
			name:    "sample size negative",
			row:     []string{"1", "2", "-4"},
			roles:   noStudy,
			wantErr: ErrInvalidN,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.row, tt.roles)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_SharedColumn(t *testing.T) {
	roles := schema.RoleMap{Effect: 0, StdErr: 0, SampleSize: 0, Study: schema.NoColumn}

	got, err := Normalize([]string{"7"}, roles)
	require.NoError(t, err)
	assert.Equal(t, Parsed{Effect: 7, SE: 7, N: 7}, got)
}
