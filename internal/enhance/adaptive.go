package enhance

import "image"

// adaptiveEqualize applies contrast-limited local histogram equalization
// on a fixed tile grid, interpolating between neighboring tile mappings.
// It corrects the uneven lighting and glare typical of photographed
// documents. Skips when the image is too small for stable per-tile
// histograms.
func (e *Enhancer) adaptiveEqualize(src *image.Gray) (*image.Gray, bool) {
	grid := e.cfg.TileGrid
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	if w < grid*8 || h < grid*8 {
		return nil, false
	}

	tileW := (w + grid - 1) / grid
	tileH := (h + grid - 1) / grid

	// Build one remap LUT per tile.
	luts := make([][256]uint8, grid*grid)
	for ty := 0; ty < grid; ty++ {
		for tx := 0; tx < grid; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := min(x0+tileW, w), min(y0+tileH, h)

			var hist [256]int
			for y := y0; y < y1; y++ {
				row := src.Pix[y*src.Stride+x0 : y*src.Stride+x1]
				for _, v := range row {
					hist[v]++
				}
			}
			n := (x1 - x0) * (y1 - y0)
			if n == 0 {
				return nil, false
			}
			clipHistogram(&hist, n, e.cfg.ClipLimit)
			luts[ty*grid+tx] = cdfToLUT(&hist, n)
		}
	}

	// Bilinear interpolation between the four surrounding tile LUTs.
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0, wy := splitTileCoord(fy, grid)
		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0, wx := splitTileCoord(fx, grid)

			v := src.Pix[y*src.Stride+x]
			v00 := float64(luts[ty0*grid+tx0][v])
			v01 := float64(luts[ty0*grid+min(tx0+1, grid-1)][v])
			v10 := float64(luts[min(ty0+1, grid-1)*grid+tx0][v])
			v11 := float64(luts[min(ty0+1, grid-1)*grid+min(tx0+1, grid-1)][v])

			top := v00*(1-wx) + v01*wx
			bot := v10*(1-wx) + v11*wx
			dst.Pix[y*dst.Stride+x] = uint8(top*(1-wy) + bot*wy + 0.5)
		}
	}
	return dst, true
}

// clipHistogram caps each bin at clipLimit times the mean bin height and
// redistributes the excess evenly, bounding noise amplification in flat
// regions.
func clipHistogram(hist *[256]int, n int, clipLimit float64) {
	limit := int(clipLimit * float64(n) / 256.0)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for i := range hist {
		if hist[i] > limit {
			excess += hist[i] - limit
			hist[i] = limit
		}
	}
	if excess == 0 {
		return
	}
	share := excess / 256
	rem := excess % 256
	for i := range hist {
		hist[i] += share
		if i < rem {
			hist[i]++
		}
	}
}

func cdfToLUT(hist *[256]int, n int) [256]uint8 {
	var lut [256]uint8
	cdf := 0
	cdfMin := -1
	for i, c := range hist {
		cdf += c
		if cdfMin < 0 && cdf > 0 {
			cdfMin = cdf
		}
		denom := n - cdfMin
		if denom <= 0 {
			lut[i] = uint8(i)
			continue
		}
		v := (cdf - cdfMin) * 255 / denom
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		lut[i] = uint8(v)
	}
	return lut
}

// splitTileCoord clamps a continuous tile coordinate into a base index
// and an interpolation weight.
func splitTileCoord(f float64, grid int) (int, float64) {
	if f < 0 {
		return 0, 0
	}
	i := int(f)
	if i >= grid-1 {
		return grid - 1, 0
	}
	return i, f - float64(i)
}
