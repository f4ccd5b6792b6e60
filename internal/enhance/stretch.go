package enhance

import "image"

// globalStretch linearly remaps luminance between the 2nd and 98th
// percentiles to the full range. Skips when the image carries no usable
// tonal spread (already near-binary, or degenerate).
func globalStretch(src *image.Gray) (*image.Gray, bool) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	n := w * h
	if n == 0 {
		return nil, false
	}

	var hist [256]int
	for y := 0; y < h; y++ {
		for _, v := range src.Pix[y*src.Stride : y*src.Stride+w] {
			hist[v]++
		}
	}

	lo := percentile(&hist, n, 2)
	hi := percentile(&hist, n, 98)
	if hi <= lo {
		return nil, false
	}
	if lo == 0 && hi == 255 {
		// Full-range already; remapping would be a no-op.
		return src, true
	}

	var lut [256]uint8
	for i := range lut {
		v := (i - lo) * 255 / (hi - lo)
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		lut[i] = uint8(v)
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srow := src.Pix[y*src.Stride : y*src.Stride+w]
		drow := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x, v := range srow {
			drow[x] = lut[v]
		}
	}
	return dst, true
}

// percentile returns the smallest luminance whose cumulative count
// reaches pct percent of n.
func percentile(hist *[256]int, n, pct int) int {
	target := n * pct / 100
	cum := 0
	for i, c := range hist {
		cum += c
		if cum >= target && cum > 0 {
			return i
		}
	}
	return 255
}
