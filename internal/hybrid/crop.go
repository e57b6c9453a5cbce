package hybrid

import (
	"image"

	"github.com/disintegration/imaging"
)

// cropRect extracts a sub-image, delegating to disintegration/imaging (the
// same image library the rest of the pipeline's preprocessing uses) rather
// than hand-rolling pixel copies.
func cropRect(img image.Image, rect image.Rectangle) image.Image {
	return imaging.Crop(img, rect)
}
