/**
 * PDF rasterization (C1) — shells out to an external PDF-to-image utility.
 *
 * gosseract only OCRs bitmaps; turning a PDF page into one is delegated to
 * a CLI tool, matching the external-rasterizer contract (§6).
 */

package ocr

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/adverant/intake-router/internal/pipelineerr"
)

// Rasterizer shells out to pdftoppm (poppler-utils) to turn PDF pages into
// PNG bitmaps at a configured DPI.
type Rasterizer struct {
	binPath string
	dpi     int
}

// NewRasterizer binds a rasterizer to the external binary path and DPI from
// config.
func NewRasterizer(binPath string, dpi int) *Rasterizer {
	if binPath == "" {
		binPath = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &Rasterizer{binPath: binPath, dpi: dpi}
}

// RasterizeAllPages converts every page of a PDF to PNG bytes, in page order.
// On any failure it returns RasterizationFailed per §4.1.
func (r *Rasterizer) RasterizeAllPages(pdfPath string) ([][]byte, error) {
	tmpDir, err := os.MkdirTemp("", "intake-router-raster-*")
	if err != nil {
		return nil, pipelineerr.NewRasterizationFailed(pdfPath, err)
	}
	defer os.RemoveAll(tmpDir)

	outPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command(r.binPath, "-png", "-r", fmt.Sprintf("%d", r.dpi), pdfPath, outPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, pipelineerr.NewRasterizationFailed(pdfPath, fmt.Errorf("%w: %s", err, out))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, pipelineerr.NewRasterizationFailed(pdfPath, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	pages := make([][]byte, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(tmpDir, name))
		if err != nil {
			return nil, pipelineerr.NewRasterizationFailed(pdfPath, err)
		}
		pages = append(pages, data)
	}

	if len(pages) == 0 {
		return nil, pipelineerr.NewRasterizationFailed(pdfPath, fmt.Errorf("rasterizer produced no pages"))
	}

	return pages, nil
}

// RasterizeFirstPage is the single-page, 300 DPI rasterization the hybrid
// extractor's baseline pass (§4.5 step A) and preprocessing-variant sweep
// (§4.5 step B) both need.
func (r *Rasterizer) RasterizeFirstPage(pdfPath string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "intake-router-raster1-*")
	if err != nil {
		return nil, pipelineerr.NewRasterizationFailed(pdfPath, err)
	}
	defer os.RemoveAll(tmpDir)

	outPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command(r.binPath, "-png", "-f", "1", "-l", "1", "-r", fmt.Sprintf("%d", r.dpi), pdfPath, outPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, pipelineerr.NewRasterizationFailed(pdfPath, fmt.Errorf("%w: %s", err, out))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil || len(entries) == 0 {
		return nil, pipelineerr.NewRasterizationFailed(pdfPath, fmt.Errorf("rasterizer produced no page"))
	}

	return os.ReadFile(filepath.Join(tmpDir, entries[0].Name()))
}
