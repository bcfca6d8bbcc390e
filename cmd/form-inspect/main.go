package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/a3tai/form-filler/internal/config"
	"github.com/a3tai/form-filler/internal/form"
	"github.com/a3tai/form-filler/internal/pdf"
)

type options struct {
	assetDir  string
	template  string
	mapping   string
	font      string
	fontName  string
	fontCache string
	rules     string
	format    string
	fields    string
	out       string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	svc, err := newService(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	result, err := svc.Inspect(ctx)
	if result != nil {
		if outErr := outputResults(stdout, opts.format, result); outErr != nil {
			fmt.Fprintf(stderr, "Error outputting results: %v\n", outErr)
			return 1
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.fields != "" {
		if err := fillSample(ctx, svc, opts, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("form-inspect", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.assetDir, "assets", config.DefaultAssetDir, "Directory holding the template, font and mapping")
	fs.StringVar(&opts.template, "template", "", "Template PDF (default <assets>/"+config.DefaultTemplateFile+")")
	fs.StringVar(&opts.mapping, "mapping", "", "Mapping JSON (default <assets>/"+config.DefaultMappingFile+")")
	fs.StringVar(&opts.font, "font", "", "TrueType font for values (default <assets>/"+config.DefaultFontFile+" if present)")
	fs.StringVar(&opts.fontName, "font-name", "", "Registered name of the font")
	fs.StringVar(&opts.fontCache, "font-cache", filepath.Join(os.TempDir(), "form-inspect-fonts"), "Font cache directory")
	fs.StringVar(&opts.rules, "rules", "", "Optional YAML rules overlay")
	fs.StringVar(&opts.format, "format", "text", "Output format: text, json")
	fs.StringVar(&opts.fields, "fields", "", "JSON submission to fill as a sample")
	fs.StringVar(&opts.out, "out", "", "Where to write the sample PDF (default <fields>.pdf)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: form-inspect [options] [template.pdf]\n\n")
		fmt.Fprintf(stderr, "Validates the template and lists where every mapping entry is drawn.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one template path, got %d", fs.NArg())
	}
	if fs.NArg() == 1 {
		opts.template = fs.Arg(0)
	}
	if opts.format != "text" && opts.format != "json" {
		return nil, fmt.Errorf("unknown format %q", opts.format)
	}

	if opts.template == "" {
		opts.template = filepath.Join(opts.assetDir, config.DefaultTemplateFile)
	}
	if opts.mapping == "" {
		opts.mapping = filepath.Join(opts.assetDir, config.DefaultMappingFile)
	}
	if opts.font == "" {
		// The default font is optional here; without it values use Helvetica.
		if candidate := filepath.Join(opts.assetDir, config.DefaultFontFile); fileExists(candidate) {
			opts.font = candidate
		}
	}
	return opts, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func newService(opts *options) (*pdf.Service, error) {
	var rules *form.Rules
	if opts.rules != "" {
		var err error
		if rules, err = form.LoadRules(opts.rules); err != nil {
			return nil, err
		}
	}
	return pdf.NewService(pdf.Options{
		Rules: rules,
		Assets: pdf.AssetPaths{
			Template:     opts.template,
			Font:         opts.font,
			FontName:     opts.fontName,
			FontCacheDir: opts.fontCache,
			Mapping:      opts.mapping,
		},
		MaxFileSize: config.DefaultMaxFileSize,
	})
}

func outputResults(w io.Writer, format string, result *pdf.InspectResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return outputText(w, result)
}

func outputText(w io.Writer, result *pdf.InspectResult) error {
	tpl := result.Template
	fmt.Fprintf(w, "Template: %s\n", tpl.Path)
	if !tpl.Valid {
		fmt.Fprintf(w, "  INVALID: %s\n", tpl.Message)
	} else {
		fmt.Fprintf(w, "  Size: %d bytes\n", tpl.Size)
		fmt.Fprintf(w, "  Pages: %d\n", tpl.PageCount)
		for i, p := range tpl.Pages {
			fmt.Fprintf(w, "    %d. %.2f x %.2f pt\n", i+1, p.Width, p.Height)
		}
		for _, lib := range tpl.Libraries {
			fmt.Fprintf(w, "  %s: %d page(s)\n", lib.Library, lib.PageCount)
		}
	}
	for _, warning := range tpl.Warnings {
		fmt.Fprintf(w, "  WARNING: %s\n", warning)
	}

	if result.Fonts.Unicode != "" {
		fmt.Fprintf(w, "\nFonts:\n")
		fmt.Fprintf(w, "  Values: %s\n", result.Fonts.Unicode)
		fmt.Fprintf(w, "  Check marks: %s\n", result.Fonts.Latin)
	}

	if len(result.Placements) == 0 {
		return nil
	}
	skipped := 0
	fmt.Fprintf(w, "\nPlacements (%d):\n", len(result.Placements))
	for _, p := range result.Placements {
		if p.Skip != "" {
			skipped++
			fmt.Fprintf(w, "  %-24s p%-2d %-10s SKIP %s\n", p.Field, p.Page, p.Mode, p.Skip)
			continue
		}
		fmt.Fprintf(w, "  %-24s p%-2d %-10s (%7.2f, %7.2f) %4.1fpt\n", p.Field, p.Page, p.Mode, p.X, p.Y, p.Size)
	}
	_, err := fmt.Fprintf(w, "\n%d placement(s), %d skipped\n", len(result.Placements), skipped)
	return err
}

// fillSample renders a submission file and writes the PDF next to it.
func fillSample(ctx context.Context, svc *pdf.Service, opts *options, w io.Writer) error {
	data, err := os.ReadFile(opts.fields)
	if err != nil {
		return fmt.Errorf("failed to read fields: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse fields %s: %w", opts.fields, err)
	}

	result, err := svc.Generate(ctx, pdf.GenerateRequest{Record: form.FromRaw(raw)})
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = opts.fields[:len(opts.fields)-len(filepath.Ext(opts.fields))] + ".pdf"
	}
	if err := os.WriteFile(out, result.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	fmt.Fprintf(w, "\nSample: %s (%d field(s) drawn)\n", out, result.Stamps)
	for _, skip := range result.Skipped {
		fmt.Fprintf(w, "  skipped %s: %s\n", skip.Field, skip.Error())
	}
	return nil
}
