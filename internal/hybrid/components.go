package hybrid

import "image"

// otsuThreshold picks the gray-level threshold that maximizes between-class
// variance (Otsu's method), used to binarize a field crop before
// connected-component labeling. When several consecutive split levels share
// the maximum (empty histogram bins between the classes), the middle of that
// run is returned; every dark-class pixel is strictly below the result.
func otsuThreshold(gray *image.Gray) uint8 {
	var hist [256]int
	for _, v := range gray.Pix {
		hist[v]++
	}

	total := len(gray.Pix)
	var sum float64
	for t := 0; t < 256; t++ {
		sum += float64(t) * float64(hist[t])
	}

	var sumB, wB float64
	var maxVar float64
	threshold, plateauEnd := 0, -1

	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		betweenVar := wB * wF * (mB - mF) * (mB - mF)
		if betweenVar > maxVar {
			maxVar = betweenVar
			threshold, plateauEnd = t, t
		} else if betweenVar == maxVar && plateauEnd == t-1 {
			plateauEnd = t
		}
	}

	if plateauEnd < 0 {
		return uint8(threshold)
	}
	return uint8((threshold + plateauEnd + 2) / 2)
}

var eightConnected = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

// connectedComponents finds external contours by flood-filling pixels
// darker than threshold (ink) and returns each component's bounding
// rectangle, in image coordinates.
func connectedComponents(gray *image.Gray, threshold uint8) []image.Rectangle {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	visited := make([]bool, w*h)

	idx := func(x, y int) int { return y*w + x }
	isInk := func(x, y int) bool {
		return gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y < threshold
	}

	var rects []image.Rectangle

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if visited[idx(x, y)] || !isInk(x, y) {
				continue
			}

			stack := [][2]int{{x, y}}
			visited[idx(x, y)] = true
			minX, minY, maxX, maxY := x, y, x, y

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				px, py := p[0], p[1]

				if px < minX {
					minX = px
				}
				if px > maxX {
					maxX = px
				}
				if py < minY {
					minY = py
				}
				if py > maxY {
					maxY = py
				}

				for _, d := range eightConnected {
					nx, ny := px+d[0], py+d[1]
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					if visited[idx(nx, ny)] || !isInk(nx, ny) {
						continue
					}
					visited[idx(nx, ny)] = true
					stack = append(stack, [2]int{nx, ny})
				}
			}

			rects = append(rects, image.Rect(
				bounds.Min.X+minX, bounds.Min.Y+minY,
				bounds.Min.X+maxX+1, bounds.Min.Y+maxY+1,
			))
		}
	}

	return rects
}

// filterBoxes keeps rectangles with width/height in [15, 80]px, area >=
// 200, and aspect ratio in [0.3, 3.0], per §4.5b step 2.
func filterBoxes(rects []image.Rectangle) []image.Rectangle {
	out := make([]image.Rectangle, 0, len(rects))
	for _, r := range rects {
		w, h := r.Dx(), r.Dy()
		if w < 15 || w > 80 || h < 15 || h > 80 {
			continue
		}
		if w*h < 200 {
			continue
		}
		aspect := float64(w) / float64(h)
		if aspect < 0.3 || aspect > 3.0 {
			continue
		}
		out = append(out, r)
	}
	return out
}
