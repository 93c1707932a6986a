package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ai-examgen-be/internal/pkg/logger"
	"ai-examgen-be/pkg/extract"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
)

// Offline extraction tool. Runs the same pipeline the upload endpoint uses
// against a local PDF and writes per-page text and rasters to a directory.
//
// Usage: go run ./cmd/extract -in material.pdf -out ./extracted -dpi 150
func main() {
	inPath := flag.String("in", "", "path to the source PDF")
	outDir := flag.String("out", "extracted", "output directory for page files")
	dpi := flag.Float64("dpi", extract.DefaultRenderDPI, "render resolution for page rasters")
	flag.Parse()

	if *inPath == "" {
		color.Red("Error: -in is required")
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		color.Red("Error: cannot read %s: %v", *inPath, err)
		os.Exit(1)
	}

	if err := extract.CheckDeclaredType(filepath.Base(*inPath), "application/pdf"); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		color.Red("Error: cannot create %s: %v", *outDir, err)
		os.Exit(1)
	}

	cliLogger := logger.NewIsolatedLogger(filepath.Join(*outDir, "extract.log"))
	extractor := extract.NewDocumentExtractor(
		extract.NewTabulaSource(),
		extract.NewFitzRenderer(*dpi),
		cliLogger,
	)

	color.Cyan("Extracting %s ...", filepath.Base(*inPath))

	doc, err := extractor.Extract(context.Background(), data)
	if err != nil && !errors.Is(err, extract.ErrEmptyContent) {
		color.Red("Error: extraction failed: %v", err)
		os.Exit(1)
	}
	if errors.Is(err, extract.ErrEmptyContent) {
		color.Yellow("Warning: document yielded no text and no rasters")
	}

	bar := pb.StartNew(len(doc.Pages))
	textPages, imagePages := 0, 0
	for _, page := range doc.Pages {
		base := filepath.Join(*outDir, fmt.Sprintf("page_%03d", page.Index))

		if strings.TrimSpace(page.Text) != "" {
			if err := os.WriteFile(base+".txt", []byte(page.Text), 0o644); err != nil {
				color.Red("Error: write %s.txt: %v", base, err)
				os.Exit(1)
			}
			textPages++
		}
		if len(page.Image) > 0 {
			if err := os.WriteFile(base+".png", page.Image, 0o644); err != nil {
				color.Red("Error: write %s.png: %v", base, err)
				os.Exit(1)
			}
			imagePages++
		}
		bar.Increment()
	}
	bar.Finish()

	color.Green("✅ Done: %d pages (%d with text, %d rendered) -> %s", len(doc.Pages), textPages, imagePages, *outDir)
}
