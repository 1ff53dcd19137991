package pdf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		pos          Position
		wantX, wantY float64
	}{
		{"top-left", TopLeft, 30, 682},
		{"top-right", TopRight, 482, 682},
		{"bottom-left", BottomLeft, 30, 30},
		{"bottom-right", BottomRight, 482, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := ResolveOrigin(612, 792, 100, 80, 30, tt.pos)
			require.Equal(t, tt.wantX, x)
			require.Equal(t, tt.wantY, y)
		})
	}
}

func TestResolveOrigin_ZeroPadding(t *testing.T) {
	t.Parallel()

	x, y := ResolveOrigin(300, 300, 100, 50, 0, TopRight)
	require.Equal(t, 200.0, x)
	require.Equal(t, 250.0, y)
}

func TestResolveOrigin_NoClamping(t *testing.T) {
	t.Parallel()

	// Logo plus padding is wider and taller than the page.
	x, y := ResolveOrigin(100, 100, 150, 120, 10, TopRight)
	require.Equal(t, -60.0, x)
	require.Equal(t, -30.0, y)

	x, y = ResolveOrigin(100, 100, 150, 120, 10, BottomLeft)
	require.Equal(t, 10.0, x)
	require.Equal(t, 10.0, y)
}
