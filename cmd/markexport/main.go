// Command markexport renders a template onto an image without the UI.
package main

import (
	"flag"
	"fmt"
	"os"

	"photomark/internal/asset"
	"photomark/internal/editor"
	"photomark/internal/export"
	"photomark/internal/template"
)

func main() {
	imagePath := flag.String("image", "", "Path to the base image (PNG, JPEG, or TIFF)")
	templatePath := flag.String("template", "", "Path to a template JSON file")
	outPath := flag.String("out", "out.png", "Output file path")
	formatName := flag.String("format", "png", "Output format: png or jpeg")
	quality := flag.Float64("quality", 0.9, "JPEG quality in [0, 1]")
	scale := flag.Float64("scale", 1.0, "Resolution multiplier relative to the canvas")
	text := flag.String("text", "", "Add a text watermark in the bottom-right corner")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: markexport -image <path> [-template <path>] [-text <watermark>] [-out out.png] [-format png|jpeg] [-quality 0.9] [-scale 1.0]")
		os.Exit(1)
	}

	format, err := export.ParseFormat(*formatName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	a, err := asset.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded image: %dx%d pixels\n", a.Width, a.Height)

	engine := editor.NewEngine()
	engine.SetImage(editor.BaseImage{Src: a.Path, Data: a.Image},
		float64(a.Width), float64(a.Height))

	if *templatePath != "" {
		tpl, err := template.Load(*templatePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load template: %v\n", err)
			os.Exit(1)
		}
		tpl.Apply(engine)
		fmt.Printf("Applied template: %s (%d layers)\n", tpl.Name, len(tpl.Config.Layers))
	}

	if *text != "" {
		engine.AddTextWatermark(*text, editor.AnchorBottomRight, editor.Patch{})
	}

	req := export.Request{Format: format, Quality: *quality, Scale: *scale}
	img, err := export.Render(engine, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Render failed: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := export.Encode(f, img, req); err != nil {
		fmt.Fprintf(os.Stderr, "Encode failed: %v\n", err)
		os.Exit(1)
	}

	bounds := img.Bounds()
	fmt.Printf("Wrote %s (%dx%d)\n", *outPath, bounds.Dx(), bounds.Dy())
}
