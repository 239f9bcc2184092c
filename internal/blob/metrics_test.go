package blob

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
)

func labeledSquare(t testing.TB) *pixel.Image {
	img := centeredSquare(t)
	img.Kind = pixel.KindLabel
	return img
}

func TestAnalyse_Square(t *testing.T) {
	info, err := Analyse(labeledSquare(t), 1)
	require.NoError(t, err)

	assert.Equal(t, uint8(1), info.Label)
	assert.Equal(t, uint16(9), info.PixelCount)
	assert.Equal(t, uint16(3), info.Width)
	assert.Equal(t, uint16(3), info.Height)
	assert.Equal(t, 1, info.MinCol)
	assert.Equal(t, 1, info.MinRow)
	assert.Equal(t, 3, info.MaxCol)
	assert.Equal(t, 3, info.MaxRow)

	// Four corners expose two sides, four edge centers one, the middle none.
	assert.InDelta(t, 4+4*math.Sqrt2, float64(info.Perimeter), 1e-5)
}

func TestAnalyse_ThreeSidedConstant(t *testing.T) {
	assert.InDelta(t, 0.20710678, perimeterThreeSides, 1e-8)
	assert.Equal(t, 0.5/(1+math.Sqrt2), perimeterThreeSides)

	// A horizontal bar: both ends expose three sides, the middle two.
	img := image(t, pixel.KindLabel, [][]uint8{
		{0, 0, 0, 0, 0},
		{0, 4, 4, 4, 0},
		{0, 0, 0, 0, 0},
	})
	info, err := Analyse(img, 4)
	require.NoError(t, err)
	assert.InDelta(t, 2*0.5/(1+math.Sqrt2)+math.Sqrt2, float64(info.Perimeter), 1e-5)
	assert.Equal(t, uint16(1), info.Height)
	assert.Equal(t, uint16(3), info.Width)
}

func TestAnalyse_IsolatedPixel(t *testing.T) {
	img := image(t, pixel.KindLabel, [][]uint8{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	})
	info, err := Analyse(img, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), info.PixelCount)
	assert.Zero(t, info.Perimeter, "four exposed sides add nothing")
}

func TestAnalyse_ImageEdgeIsNotBoundary(t *testing.T) {
	full, err := pixel.NewLabel(3, 3)
	require.NoError(t, err)
	full.Fill(1)
	info, err := Analyse(full, 1)
	require.NoError(t, err)
	assert.Zero(t, info.Perimeter, "no background anywhere")

	// Only the right column touches background, one side per pixel.
	img := image(t, pixel.KindLabel, [][]uint8{
		{1, 1, 0},
		{1, 1, 0},
	})
	info, err = Analyse(img, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2*perimeterOneSide, float64(info.Perimeter), 1e-6)
}

func TestAnalyse_OtherLabelIsNotBoundary(t *testing.T) {
	img := image(t, pixel.KindLabel, [][]uint8{
		{0, 0, 0, 0},
		{0, 1, 2, 0},
		{0, 0, 0, 0},
	})
	info, err := Analyse(img, 1)
	require.NoError(t, err)
	// Three background sides; the side facing label 2 is not counted.
	assert.InDelta(t, perimeterThreeSides, float64(info.Perimeter), 1e-6)
}

func TestAnalyse_Errors(t *testing.T) {
	_, err := Analyse(labeledSquare(t), 2)
	assert.ErrorIs(t, err, ErrBlobNotFound)

	gray, err := pixel.NewGray(2, 2)
	require.NoError(t, err)
	_, err = Analyse(gray, 0)
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestAnalyse_Saturates(t *testing.T) {
	img, err := pixel.NewLabel(300, 300)
	require.NoError(t, err)
	img.Fill(1)
	info, err := Analyse(img, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(math.MaxUint16), info.PixelCount)
	assert.Equal(t, uint16(300), info.Width)
}

func TestAnalyseAll(t *testing.T) {
	img := image(t, pixel.KindLabel, [][]uint8{
		{1, 1, 0, 2},
		{0, 0, 0, 2},
		{3, 0, 0, 2},
	})
	infos, err := AnalyseAll(img)
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, uint16(2), infos[0].PixelCount)
	assert.Equal(t, uint16(3), infos[1].Height)
	assert.Equal(t, uint8(3), infos[2].Label)
}

func TestCentroid(t *testing.T) {
	col, row, err := Centroid(labeledSquare(t), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, col)
	assert.Equal(t, 2, row)

	// (0+1+2+3)/4 = 1.5 rounds up.
	bar := image(t, pixel.KindLabel, [][]uint8{{5, 5, 5, 5}, {0, 0, 0, 0}})
	col, row, err = Centroid(bar, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, col)
	assert.Equal(t, 0, row)

	_, _, err = Centroid(bar, 1)
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestNormalizedCentralMoment(t *testing.T) {
	img := labeledSquare(t)

	tests := []struct {
		p, q int
		want float64
	}{
		{0, 0, 1},
		{1, 0, 0},
		{0, 1, 0},
		{2, 0, 6.0 / 81},
		{0, 2, 6.0 / 81},
		{1, 1, 0},
		{3, 0, 0},
		{2, 2, 4.0 / math.Pow(9, 3)},
	}
	for _, tt := range tests {
		got, err := NormalizedCentralMoment(img, 1, tt.p, tt.q)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "nu%d%d", tt.p, tt.q)
	}

	_, err := NormalizedCentralMoment(img, 1, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidMoment)
	_, err = NormalizedCentralMoment(img, 9, 2, 0)
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestComputeMoments(t *testing.T) {
	m, err := ComputeMoments(labeledSquare(t), 1)
	require.NoError(t, err)
	assert.Equal(t, 9.0, m.M00)
	assert.Equal(t, 2.0, m.CentroidCol)
	assert.Equal(t, 2.0, m.CentroidRow)
	assert.InDelta(t, 6.0, m.Mu20, 1e-12)
	assert.InDelta(t, 6.0/81, m.Nu20, 1e-12)
	assert.InDelta(t, 6.0/81, m.Nu02, 1e-12)
	assert.InDelta(t, 0, m.Nu11, 1e-12)
}
