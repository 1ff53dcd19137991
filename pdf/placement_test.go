package pdf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniform_PositionFor(t *testing.T) {
	t.Parallel()

	mode := Uniform{Position: BottomRight}
	for page := 1; page <= 5; page++ {
		pos, ok := mode.PositionFor(page)
		require.True(t, ok)
		require.Equal(t, BottomRight, pos)
	}
}

func TestPerPage_PositionFor(t *testing.T) {
	t.Parallel()

	configs := []PageConfig{
		{PageNumber: 3, Position: TopLeft},
		{PageNumber: 1, Position: BottomLeft},
		{PageNumber: 3, Position: BottomRight},
	}

	modes := map[string]Mode{
		"indexed": NewPerPage(configs),
		"scan":    PerPage{Configs: configs},
	}

	for name, mode := range modes {
		mode := mode
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pos, ok := mode.PositionFor(1)
			require.True(t, ok)
			require.Equal(t, BottomLeft, pos)

			// first entry for page 3 wins
			pos, ok = mode.PositionFor(3)
			require.True(t, ok)
			require.Equal(t, TopLeft, pos)

			pos, ok = mode.PositionFor(2)
			require.False(t, ok)
			require.Empty(t, pos)
		})
	}
}

func TestPerPage_Empty(t *testing.T) {
	t.Parallel()

	_, ok := NewPerPage(nil).PositionFor(1)
	require.False(t, ok)
}

func TestParsePosition(t *testing.T) {
	t.Parallel()

	for _, p := range Positions {
		got, err := ParsePosition(" " + string(p) + " ")
		require.NoError(t, err)
		require.Equal(t, p, got)
	}

	got, err := ParsePosition("Top-Right")
	require.NoError(t, err)
	require.Equal(t, TopRight, got)

	_, err = ParsePosition("center")
	var paramErr *InvalidParameterError
	require.True(t, errors.As(err, &paramErr))
	require.Equal(t, "position", paramErr.Param)
}

func TestValidateMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mode    Mode
		wantErr bool
	}{
		{"uniform", Uniform{Position: TopLeft}, false},
		{"uniform pointer", &Uniform{Position: TopLeft}, false},
		{"uniform empty position", Uniform{}, true},
		{"nil", nil, true},
		{"per page", NewPerPage([]PageConfig{{PageNumber: 2, Position: TopRight}}), false},
		{"per page empty", NewPerPage(nil), false},
		{"per page zero page", NewPerPage([]PageConfig{{PageNumber: 0, Position: TopRight}}), true},
		{"per page bad position", PerPage{Configs: []PageConfig{{PageNumber: 1, Position: "middle"}}}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateMode(tt.mode)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var paramErr *InvalidParameterError
			require.True(t, errors.As(err, &paramErr), "got %v", err)
		})
	}
}
