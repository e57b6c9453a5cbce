/**
 * OCR Engine Driver (C1)
 *
 * Turns an image into recognized text via Tesseract (through gosseract's
 * cgo binding), and turns a PDF page into an image via an external
 * rasterizer. The Tesseract executable is only invoked once, as a startup
 * probe. Config
 * discovery happens once at startup: see config.Config.ResolvedTesseractPath.
 */

package ocr

import (
	"context"
	"os/exec"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/adverant/intake-router/internal/pipelineerr"
)

// EngineConfig names one OEM/PSM/whitelist combination the driver can run.
// Label identifies it for logging and for OcrAttempt.Config.
type EngineConfig struct {
	Label     string
	OEM       string // "0" legacy, "1" LSTM
	PSM       gosseract.PageSegMode
	Whitelist string // empty = no restriction
}

// Standard engine configs used by the baseline extractor (§4.1) and as the
// generic sweep in the handwritten-field extractor (§4.5a).
var (
	ConfigDefault = EngineConfig{Label: "default", OEM: "1", PSM: gosseract.PSM_AUTO}

	// LSTM raw-line / single-line / single-block, the handwriting-oriented
	// configs from original_source/ocr/handwriting_config.py, reused
	// verbatim as the hybrid extractor's preprocessing-variant sweep (§4.5
	// step B).
	ConfigLSTMRawLine     = EngineConfig{Label: "oem1-psm13", OEM: "1", PSM: gosseract.PSM_RAW_LINE}
	ConfigLSTMSingleLine  = EngineConfig{Label: "oem1-psm7", OEM: "1", PSM: gosseract.PSM_SINGLE_LINE}
	ConfigLSTMSingleBlock = EngineConfig{Label: "oem1-psm6", OEM: "1", PSM: gosseract.PSM_SINGLE_BLOCK}

	// Character-restricted configs for names and account numbers.
	ConfigLettersWhitelist = EngineConfig{
		Label: "psm13-letters", OEM: "1", PSM: gosseract.PSM_RAW_LINE,
		Whitelist: "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789- ",
	}
	ConfigNameWhitelist = EngineConfig{
		Label: "psm7-name", OEM: "1", PSM: gosseract.PSM_SINGLE_LINE,
		Whitelist: "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz ",
	}
	ConfigDigitsWhitelist = EngineConfig{
		Label: "psm8-digits", OEM: "1", PSM: gosseract.PSM_SINGLE_WORD,
		Whitelist: "0123456789-",
	}

	// Boxed-field single-character configs (§4.5b step 5).
	ConfigBoxedCharLSTM   = EngineConfig{Label: "psm10-char-lstm", OEM: "1", PSM: gosseract.PSM_SINGLE_CHAR}
	ConfigBoxedWordLSTM   = EngineConfig{Label: "psm8-word-lstm", OEM: "1", PSM: gosseract.PSM_SINGLE_WORD}
	ConfigBoxedCharLegacy = EngineConfig{Label: "psm10-char-legacy", OEM: "0", PSM: gosseract.PSM_SINGLE_CHAR}
	ConfigBoxedRawLSTM    = EngineConfig{Label: "psm13-raw-lstm", OEM: "1", PSM: gosseract.PSM_RAW_LINE}
)

// HybridConfigSweep is the hybrid extractor's step B sweep: three configs,
// the LSTM engine across page-segmentation modes 6/7/13. The caller runs
// each on the grayscale first page only; no high-contrast, auto-contrast or
// sharpened variant is used in this step.
var HybridConfigSweep = []EngineConfig{ConfigLSTMSingleBlock, ConfigLSTMSingleLine, ConfigLSTMRawLine}

// HandwrittenFieldConfigSweep is the eight-config sweep §4.5a names.
var HandwrittenFieldConfigSweep = []EngineConfig{
	ConfigBoxedWordLSTM, ConfigLSTMSingleLine, ConfigLSTMRawLine, ConfigLSTMSingleBlock,
	ConfigLettersWhitelist, ConfigNameWhitelist, ConfigDigitsWhitelist, ConfigBoxedCharLegacy,
}

// BoxedFieldConfigSweep is the four-config sweep §4.5b step 5 names.
var BoxedFieldConfigSweep = []EngineConfig{ConfigBoxedCharLSTM, ConfigBoxedWordLSTM, ConfigBoxedCharLegacy, ConfigBoxedRawLSTM}

// Engine runs Tesseract through gosseract's cgo binding. tesseractPath is
// only used for the startup probe; recognition does not call the executable.
type Engine struct {
	tesseractPath string
}

// NewEngine builds a driver bound to a resolved Tesseract binary path.
// tesseractPath is the result of config.Config.ResolvedTesseractPath, called
// once at startup per §4.1.
func NewEngine(tesseractPath string) (*Engine, error) {
	if tesseractPath == "" {
		tesseractPath = "tesseract"
	}
	if err := probe(tesseractPath); err != nil {
		return nil, pipelineerr.NewOcrBackendUnavailable("", err)
	}
	return &Engine{tesseractPath: tesseractPath}, nil
}

// probe verifies the OCR executable can be invoked at all (§5: "a short
// probe timeout at startup for version verification").
func probe(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, path, "--version")
	return cmd.Run()
}

// RecognizeBytes runs OCR on encoded image bytes (PNG/JPEG) with the given
// engine config.
func (e *Engine) RecognizeBytes(data []byte, cfg EngineConfig) (*Result, error) {
	start := time.Now()

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(data); err != nil {
		return nil, pipelineerr.NewOcrBackendUnavailable("", err)
	}

	if err := client.SetVariable("tessedit_ocr_engine_mode", cfg.OEM); err != nil {
		return nil, pipelineerr.NewOcrBackendUnavailable("", err)
	}
	if err := client.SetPageSegMode(cfg.PSM); err != nil {
		return nil, pipelineerr.NewOcrBackendUnavailable("", err)
	}
	if cfg.Whitelist != "" {
		if err := client.SetVariable("tessedit_char_whitelist", cfg.Whitelist); err != nil {
			return nil, pipelineerr.NewOcrBackendUnavailable("", err)
		}
	}

	text, err := client.Text()
	if err != nil {
		return nil, pipelineerr.NewOcrBackendUnavailable("", err)
	}

	words := wordBoxes(client)

	return &Result{
		Text:     text,
		Words:    words,
		Duration: time.Since(start),
	}, nil
}

// wordBoxes extracts per-word bounding boxes for the label-anchoring step
// (§4.5 step C). A failure here is non-fatal: the caller degrades to
// text-only extraction.
func wordBoxes(client *gosseract.Client) []Word {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil
	}
	out := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, Word{
			Text:       b.Word,
			Confidence: b.Confidence,
			BoundingBox: BoundingBox{
				X:      b.Box.Min.X,
				Y:      b.Box.Min.Y,
				Width:  b.Box.Dx(),
				Height: b.Box.Dy(),
			},
		})
	}
	return out
}
