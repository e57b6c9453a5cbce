/**
 * Router (C6)
 *
 * Decides the destination bucket, synthesizes the output filename, converts
 * images to PDF, moves the source atomically, and resolves collisions
 * (§4.6). Image->PDF conversion is grounded in
 * gardar-ocrchestra/pkg/pdfocr/create.go's createPDFFromImage, adapted down
 * to a plain image-only page (no OCR text layer — the text has already been
 * parsed out upstream of the router).
 */

package router

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/adverant/intake-router/internal/config"
	"github.com/adverant/intake-router/internal/model"
	"github.com/adverant/intake-router/internal/pipelineerr"
)

// dpi100PointScale converts a pixel measurement taken at 100 DPI into PDF
// points (1 point = 1/72 inch): 72/100.
const dpi100PointScale = 72.0 / 100.0

const maxCollisionAttempts = 100000

// Dirs maps each destination bucket to its configured directory.
func Dirs(cfg *config.Config) map[model.DestinationBucket]string {
	return map[model.DestinationBucket]string{
		model.BucketFullyIndexed:     cfg.FullyIndexedDir,
		model.BucketPartiallyIndexed: cfg.PartiallyIndexedDir,
		model.BucketFailed:           cfg.FailedDir,
	}
}

// ExtOut derives the output extension per §3: "pdf" if the input was an
// image, else the original extension.
func ExtOut(isImage bool, ext string) string {
	if isImage {
		return "pdf"
	}
	return ext
}

// OutputFilename synthesizes the destination filename per §3/§6's grammar.
func OutputFilename(decision model.RoutingDecision, fields model.ExtractedFields, originalBase, extOut string) string {
	switch decision {
	case model.DecisionFull:
		return fmt.Sprintf("%s_%s.%s", sanitize(*fields.Name()), sanitize(*fields.Account), extOut)
	case model.DecisionPartial:
		var key string
		if fields.HasName() {
			key = sanitize(*fields.Name())
		} else {
			key = sanitize(*fields.Account)
		}
		return fmt.Sprintf("%s.%s", key, extOut)
	default: // Failed: original filename, extension preserved unless conversion applies
		return fmt.Sprintf("%s.%s", originalBase, extOut)
	}
}

// sanitize keeps a path separator out of an extracted-field-derived
// filename component; the spec names no other filename restriction.
func sanitize(s string) string {
	return strings.ReplaceAll(s, string(filepath.Separator), "_")
}

// ResolveCollision returns the first path in dir for filename that does not
// already exist, appending "_n" with the smallest n >= 1 as needed (§4.6
// step 3 / §6's collision suffix grammar).
func ResolveCollision(dir, filename string) (string, error) {
	candidate := filepath.Join(dir, filename)
	if !exists(candidate) {
		return candidate, nil
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	for n := 1; n <= maxCollisionAttempts; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, ext))
		if !exists(candidate) {
			return candidate, nil
		}
	}

	return "", pipelineerr.NewDestinationCollisionExhaustion(filepath.Join(dir, filename), dir)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// RouteFile implements §4.6's full algorithm for one file whose fields have
// already been extracted and parsed.
func RouteFile(srcPath string, fields model.ExtractedFields, ext string, cfg *config.Config) (string, model.RoutingDecision, error) {
	isImage := ext == "png" || ext == "jpg" || ext == "jpeg"
	extOut := ExtOut(isImage, ext)
	decision := model.Decide(fields)
	originalBase := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))

	if decision == model.DecisionFailed {
		dest, err := ConvertOrMoveToFailed(srcPath, cfg.FailedDir)
		if err != nil {
			return "", decision, err
		}
		return dest, decision, nil
	}

	filename := OutputFilename(decision, fields, originalBase, extOut)
	bucket := model.BucketFor(decision)
	destDir := Dirs(cfg)[bucket]

	dest, err := ResolveCollision(destDir, filename)
	if err != nil {
		return lastResort(srcPath, cfg, err)
	}

	if isImage {
		if err := convertImageToPDF(srcPath, dest); err != nil {
			return lastResort(srcPath, cfg, err)
		}
		if err := os.Remove(srcPath); err != nil {
			return lastResort(srcPath, cfg, err)
		}
		return dest, decision, nil
	}

	if err := moveFile(srcPath, dest); err != nil {
		return lastResort(srcPath, cfg, err)
	}
	return dest, decision, nil
}

// ConvertOrMoveToFailed is the single invariant §9's open question #2
// resolves into one shared helper: convert an image to PDF in FAILED_DIR
// when possible, else move the source as-is — used both by the router's
// Failed branch and by the watcher's retry-fallback (§4.7 step 3).
func ConvertOrMoveToFailed(srcPath, failedDir string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(srcPath), "."))
	isImage := ext == "png" || ext == "jpg" || ext == "jpeg"
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))

	if isImage {
		if dest, err := ResolveCollision(failedDir, base+".pdf"); err == nil {
			if convErr := convertImageToPDF(srcPath, dest); convErr == nil {
				if rmErr := os.Remove(srcPath); rmErr == nil {
					return dest, nil
				}
			}
		}
	}

	originalName := filepath.Base(srcPath)
	dest, err := ResolveCollision(failedDir, originalName)
	if err != nil {
		return "", pipelineerr.NewRouterMoveFailed(srcPath, failedDir, err)
	}
	if err := moveFile(srcPath, dest); err != nil {
		return "", pipelineerr.NewRouterMoveFailed(srcPath, dest, err)
	}
	return dest, nil
}

// lastResort implements §4.6 step 6: on any exception from the
// convert/move steps, move the source into FAILED_DIR preserving its
// original name.
func lastResort(srcPath string, cfg *config.Config, cause error) (string, model.RoutingDecision, error) {
	originalName := filepath.Base(srcPath)
	dest, err := ResolveCollision(cfg.FailedDir, originalName)
	if err != nil {
		return "", model.DecisionFailed, pipelineerr.NewRouterMoveFailed(srcPath, cfg.FailedDir, err)
	}
	if err := moveFile(srcPath, dest); err != nil {
		return "", model.DecisionFailed, pipelineerr.NewRouterMoveFailed(srcPath, dest, err)
	}
	return dest, model.DecisionFailed, nil
}

// moveFile renames src to dest, falling back to copy+remove across
// filesystem/device boundaries where os.Rename fails.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

// convertImageToPDF writes srcPath's image content as a single-page PDF at
// destPath, sized as if the image were scanned at 100 DPI (§4.6 steps 4-5).
func convertImageToPDF(srcPath, destPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return pipelineerr.NewRasterizationFailed(srcPath, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return pipelineerr.NewRasterizationFailed(srcPath, err)
	}

	w := float64(cfg.Width) * dpi100PointScale
	h := float64(cfg.Height) * dpi100PointScale

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

	opts := fpdf.ImageOptions{ReadDpi: false, ImageType: strings.ToUpper(format)}
	pdf.RegisterImageOptionsReader("src", opts, bytes.NewReader(data))
	pdf.ImageOptions("src", 0, 0, w, h, false, opts, 0, "")

	out, err := os.Create(destPath)
	if err != nil {
		return pipelineerr.NewRasterizationFailed(srcPath, err)
	}
	defer out.Close()

	if err := pdf.Output(out); err != nil {
		return pipelineerr.NewRasterizationFailed(srcPath, err)
	}
	return nil
}
