/**
 * Pipeline orchestrator — wires C1 (OCR) -> C2 (preprocess) -> C3 (scorer)
 * -> C5 (hybrid, PDF-only) -> C4 (parser) -> C6 (router) into the single
 * per-file sequence the watcher drives. Logging follows the teacher's
 * internal/processor/processor.go "[Job %s] Step N: ..." convention,
 * renumbered for this pipeline's own step sequence.
 */

package pipeline

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adverant/intake-router/internal/config"
	"github.com/adverant/intake-router/internal/hybrid"
	"github.com/adverant/intake-router/internal/logging"
	"github.com/adverant/intake-router/internal/model"
	"github.com/adverant/intake-router/internal/ocr"
	"github.com/adverant/intake-router/internal/parser"
	"github.com/adverant/intake-router/internal/pipelineerr"
	"github.com/adverant/intake-router/internal/preprocess"
	"github.com/adverant/intake-router/internal/router"
	"github.com/adverant/intake-router/internal/scoring"
)

// Pipeline runs the full extraction-and-routing sequence for one file and
// satisfies watcher.FileHandler.
type Pipeline struct {
	engine     *ocr.Engine
	rasterizer *ocr.Rasterizer
	cfg        *config.Config
	log        *logging.Logger
}

// New builds a Pipeline bound to the given engine, rasterizer, and config.
func New(engine *ocr.Engine, rasterizer *ocr.Rasterizer, cfg *config.Config) *Pipeline {
	return &Pipeline{
		engine:     engine,
		rasterizer: rasterizer,
		cfg:        cfg,
		log:        logging.NewLogger("pipeline"),
	}
}

// Process implements watcher.FileHandler. path is an already read-probed
// file still sitting in the intake directory; the returned event reports
// whatever terminal outcome was reached, success or failure, since a
// PipelineError never escapes this method (§7).
func (p *Pipeline) Process(path string) model.ProcessingEvent {
	job := filepath.Base(path)
	log := p.log.WithJob(job)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	isImage := ext != "pdf"

	info, statErr := os.Stat(path)
	var size int64
	if statErr == nil {
		size = info.Size()
	}

	log.Info("Step 1: recognizing text", "is_image", isImage)
	text, ocrErr := p.recognize(path, isImage)
	if ocrErr != nil {
		log.Warn("OCR produced no usable text", "error", ocrErr.Error())
		// §4.1: an OCR/rasterization failure is treated as "no text
		// extracted", not as a hard abort — the file still runs through the
		// router and lands in Failed via an all-empty ExtractedFields.
		text = ""
	}

	log.Info("Step 2: retrying with preprocessing variants")
	text = p.bestWithVariants(path, isImage, text)

	if !isImage {
		log.Info("Step 3: hybrid extraction")
		if augmented, err := hybrid.Extract(path, p.engine, p.rasterizer); err == nil && augmented != "" {
			text = text + "\n" + augmented
		} else if err != nil {
			log.Warn("hybrid extraction skipped", "error", err.Error())
		}
	}

	log.Info("Step 4: parsing fields")
	fields := parser.Parse(text)

	log.Info("Step 5: routing")
	destPath, decision, routeErr := router.RouteFile(path, fields, ext, p.cfg)

	return p.buildEvent(log, job, size, fields, decision, destPath, routeErr)
}

// recognize runs the baseline OCR pass per §4.1: rasterize-every-page and
// OCR-and-concatenate for PDFs, direct decode-and-OCR for images.
func (p *Pipeline) recognize(path string, isImage bool) (string, error) {
	if isImage {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", pipelineerr.NewOcrBackendUnavailable(path, err)
		}
		res, err := p.engine.RecognizeBytes(data, ocr.ConfigDefault)
		if err != nil {
			return "", err
		}
		return res.Text, nil
	}

	pages, err := p.rasterizer.RasterizeAllPages(path)
	if err != nil {
		return "", err
	}

	var corpus strings.Builder
	for _, pageBytes := range pages {
		res, err := p.engine.RecognizeBytes(pageBytes, ocr.ConfigDefault)
		if err != nil {
			continue
		}
		corpus.WriteString(res.Text)
		corpus.WriteString("\n")
	}
	return corpus.String(), nil
}

// bestWithVariants decodes the first page/image and re-OCRs the standard
// preprocessing family (§4.2), scoring every attempt including the
// baseline and picking the winner (§4.3), ties broken by insertion order.
func (p *Pipeline) bestWithVariants(path string, isImage bool, baseline string) string {
	img, err := p.decodeFirstPage(path, isImage)
	if err != nil {
		return baseline
	}

	candidates := []string{baseline}

	variants, err := preprocess.Standard(img)
	if err == nil {
		for _, v := range variants {
			res, err := p.engine.RecognizeBytes(v.PNG, ocr.ConfigDefault)
			if err != nil {
				continue
			}
			candidates = append(candidates, res.Text)
		}
	}

	if mild, err := preprocess.Mild(img); err == nil {
		res, err := p.engine.RecognizeBytes(mild.PNG, ocr.ConfigDefault)
		if err == nil {
			candidates = append(candidates, res.Text)
		}
	}

	best, _, _ := scoring.Best(candidates)
	return best
}

// decodeFirstPage returns the decoded first page of a PDF (rasterized at
// the configured DPI) or the image itself, for the preprocessing sweep.
func (p *Pipeline) decodeFirstPage(path string, isImage bool) (image.Image, error) {
	var data []byte
	var err error
	if isImage {
		data, err = os.ReadFile(path)
	} else {
		data, err = p.rasterizer.RasterizeFirstPage(path)
	}
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// buildEvent assembles the terminal ProcessingEvent, reducing any router
// error to a Failed-status event with details per §7's propagation policy:
// no exception escapes process_batch.
func (p *Pipeline) buildEvent(log *logging.Logger, job string, size int64, fields model.ExtractedFields, decision model.RoutingDecision, destPath string, routeErr error) model.ProcessingEvent {
	event := model.ProcessingEvent{
		OriginalFilename: job,
		FileSize:         size,
		Status:           string(model.BucketFor(decision)),
		ExtractedName:    fields.Name(),
		ExtractedAccount: fields.Account,
		Timestamp:        time.Now(),
	}

	if destPath != "" {
		final := filepath.Base(destPath)
		event.FinalFilename = &final
		event.DestinationPath = &destPath
	}

	if routeErr != nil {
		msg := routeErr.Error()
		event.ErrorMessage = &msg
		event.Status = string(model.BucketFailed)
		log.Error("Step 6: routing failed", "error", msg)
	} else {
		log.Info("Step 6: done", "destination", destPath, "status", event.Status)
	}

	return event
}
