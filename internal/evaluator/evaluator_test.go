package evaluator

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/blob-vision-mcp/internal/blob"
	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
	"github.com/ironsheep/blob-vision-mcp/internal/preprocess"
)

// frame returns a gray image filled with background.
func frame(t *testing.T, cols, rows int, background uint8) *pixel.Image {
	t.Helper()
	img, err := pixel.NewGray(cols, rows)
	require.NoError(t, err)
	img.Fill(background)
	return img
}

func disc(img *pixel.Image, cx, cy, radius int, v uint8) {
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Cols; c++ {
			dc, dr := c-cx, r-cy
			if dc*dc+dr*dr <= radius*radius {
				img.SetPixel(c, r, v)
			}
		}
	}
}

func rect(img *pixel.Image, c0, r0, c1, r1 int, v uint8) {
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			img.SetPixel(c, r, v)
		}
	}
}

func featuresConfig() FeaturesConfig {
	cfg := DefaultFeaturesConfig()
	cfg.AreaThreshold = 300
	cfg.Morph = preprocess.MorphConfig{Operation: preprocess.MorphOpen, Radius: 2, Iterations: 1}
	return cfg
}

// wellScene has a disc, a long bar and a small speck on a dark background.
func wellScene(t *testing.T) *pixel.Image {
	img := frame(t, 120, 110, 20)
	disc(img, 70, 40, 25, 200)
	rect(img, 5, 85, 65, 94, 200)
	rect(img, 9, 9, 11, 11, 200)
	return img
}

func TestFeaturesEvaluator_PicksDisc(t *testing.T) {
	ev := NewFeaturesEvaluator(blob.New(zerolog.Nop()), featuresConfig(), zerolog.Nop())
	img := wellScene(t)
	before := img.Clone()

	res, err := ev.Evaluate(img, Point{X: 60, Y: 30})
	require.NoError(t, err)

	assert.Equal(t, before.Pix, img.Pix, "frame untouched")
	assert.Equal(t, "features", res.Method)
	require.True(t, res.Found)
	assert.Equal(t, 2, res.BlobCount, "speck removed by opening")
	require.Len(t, res.Candidates, 2)

	best := res.Candidates[0]
	assert.InDelta(t, 70, best.Center.X, 1)
	assert.InDelta(t, 40, best.Center.Y, 1)
	assert.Greater(t, best.Roundness, 0.8)
	assert.Less(t, best.Eccentricity, 0.1)
	assert.Less(t, best.Score, res.Candidates[1].Score)

	assert.Equal(t, best.Center, res.Position)
	assert.InDelta(t, 10, res.Offset.X, 1)
	assert.InDelta(t, 10, res.Offset.Y, 1)
	assert.Equal(t, best.Score, res.Score)
}

func TestFeaturesEvaluator_AreaThreshold(t *testing.T) {
	cfg := featuresConfig()
	cfg.AreaThreshold = 5000
	ev := NewFeaturesEvaluator(blob.New(zerolog.Nop()), cfg, zerolog.Nop())

	res, err := ev.Evaluate(wellScene(t), Point{})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, 2, res.BlobCount)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, Point{}, res.Offset)
}

func TestFeaturesEvaluator_EmptyFrame(t *testing.T) {
	ev := NewFeaturesEvaluator(blob.New(zerolog.Nop()), featuresConfig(), zerolog.Nop())

	res, err := ev.Evaluate(frame(t, 40, 30, 90), Point{X: 20, Y: 15})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Zero(t, res.BlobCount)
	assert.NotNil(t, res.Candidates)
}

func TestFeaturesEvaluator_RejectsNonGray(t *testing.T) {
	ev := NewFeaturesEvaluator(blob.New(zerolog.Nop()), featuresConfig(), zerolog.Nop())
	bin, err := pixel.NewBinary(10, 10)
	require.NoError(t, err)

	_, err = ev.Evaluate(bin, Point{})
	assert.ErrorIs(t, err, ErrNotGray)
	_, err = ev.Evaluate(nil, Point{})
	assert.ErrorIs(t, err, ErrNotGray)
}

func TestFeaturesEvaluator_BorderRemoval(t *testing.T) {
	cfg := featuresConfig()
	cfg.RemoveBorderBlobs = true
	cfg.FillHoles = true
	ev := NewFeaturesEvaluator(blob.New(zerolog.Nop()), cfg, zerolog.Nop())

	img := wellScene(t)
	// A bright band along the left edge is dropped before labeling.
	rect(img, 0, 20, 9, 60, 200)

	res, err := ev.Evaluate(img, Point{})
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, 2, res.BlobCount)
	assert.InDelta(t, 70, res.Position.X, 1)
}

func houghConfig() HoughConfig {
	cfg := DefaultHoughConfig()
	cfg.BlurRadius = 1
	cfg.Gamma = 1
	cfg.MinRadius = 15
	cfg.MaxRadius = 25
	cfg.MinDistance = 10
	cfg.ReferenceWidth = 0
	return cfg
}

func TestHoughEvaluator_FindsCircle(t *testing.T) {
	img := frame(t, 100, 80, 20)
	disc(img, 50, 40, 20, 200)
	before := img.Clone()

	ev := NewHoughEvaluator(houghConfig(), zerolog.Nop())
	res, err := ev.Evaluate(img, Point{X: 45, Y: 45})
	require.NoError(t, err)

	assert.Equal(t, before.Pix, img.Pix, "frame untouched")
	assert.Equal(t, "hough", res.Method)
	require.True(t, res.Found)
	assert.InDelta(t, 50, res.Position.X, 2)
	assert.InDelta(t, 40, res.Position.Y, 2)
	assert.InDelta(t, 20, res.Candidates[0].Radius, 3)
	assert.Equal(t, res.Position.Sub(Point{X: 45, Y: 45}), res.Offset)
	assert.Greater(t, res.Score, 0.5)
	assert.LessOrEqual(t, res.Score, 1.0)

	for i := 1; i < len(res.Candidates); i++ {
		assert.GreaterOrEqual(t, res.Candidates[i-1].Votes, res.Candidates[i].Votes)
	}
}

func TestHoughEvaluator_NoCircle(t *testing.T) {
	ev := NewHoughEvaluator(houghConfig(), zerolog.Nop())
	res, err := ev.Evaluate(frame(t, 100, 80, 20), Point{})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.Candidates)
}

func TestHoughEvaluator_InvalidConfig(t *testing.T) {
	cfg := houghConfig()
	cfg.MaxRadius = 5
	ev := NewHoughEvaluator(cfg, zerolog.Nop())
	_, err := ev.Evaluate(frame(t, 10, 10, 0), Point{})
	assert.Error(t, err)

	_, err = ev.Evaluate(nil, Point{})
	assert.ErrorIs(t, err, ErrNotGray)
}

func TestGradientEdges(t *testing.T) {
	img := frame(t, 6, 4, 10)
	rect(img, 3, 0, 5, 3, 200)

	edges := GradientEdges(img, 30)
	assert.Equal(t, pixel.KindBinary, edges.Kind)
	assert.Equal(t, uint8(1), edges.Pixel(2, 1), "left of the step")
	assert.Equal(t, uint8(0), edges.Pixel(1, 1))
	assert.Equal(t, uint8(0), edges.Pixel(3, 1))
	assert.Equal(t, uint8(0), edges.Pixel(2, 0), "outer row skipped")

	assert.Zero(t, pixel.Count(GradientEdges(img, 255), 1))
}

func TestSuppressNearby(t *testing.T) {
	circles := []Candidate{
		{Center: Point{X: 10, Y: 10}, Votes: 9},
		{Center: Point{X: 12, Y: 11}, Votes: 8},
		{Center: Point{X: 40, Y: 10}, Votes: 7},
	}
	kept := suppressNearby(circles, 5)
	require.Len(t, kept, 2)
	assert.Equal(t, 9, kept[0].Votes)
	assert.Equal(t, 7, kept[1].Votes)

	assert.Len(t, suppressNearby(circles, 0), 3)
	assert.Empty(t, suppressNearby(nil, 5))
}

func TestScaleToWidth(t *testing.T) {
	assert.Equal(t, 100.0, scaleToWidth(50, 820, 410))
	assert.Equal(t, 50.0, scaleToWidth(50, 820, 0))
}

func TestPointSub(t *testing.T) {
	assert.Equal(t, Point{X: 3, Y: -2}, Point{X: 5, Y: 1}.Sub(Point{X: 2, Y: 3}))
}

func TestEvaluatorInterface(t *testing.T) {
	var ev Evaluator = NewFeaturesEvaluator(blob.New(zerolog.Nop()), featuresConfig(), zerolog.Nop())
	assert.Equal(t, 300, ev.(*FeaturesEvaluator).Config().AreaThreshold)

	ev = NewHoughEvaluator(DefaultHoughConfig(), zerolog.Nop())
	assert.Equal(t, 410, ev.(*HoughEvaluator).Config().ReferenceWidth)
}
