package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/a3tai/form-filler/internal/form"
	pdferrors "github.com/a3tai/form-filler/internal/pdf/errors"
	"github.com/a3tai/form-filler/internal/pdf/mapping"
	"github.com/a3tai/form-filler/internal/pdf/render"
	"github.com/a3tai/form-filler/internal/pdf/wrapper"
	"go.uber.org/zap"
)

// DefaultFilename is the download name of generated documents.
const DefaultFilename = "KT_WELCOME.pdf"

// Options configures a Service.
type Options struct {
	Rules       *form.Rules
	Assets      AssetPaths
	MaxFileSize int64
	Filename    string
	Logger      *zap.Logger
	DeriverOpts []form.Option
}

// Service fills the template by orchestrating the normalizer, the asset
// store, the layout pass and the PDF backend.
type Service struct {
	deriver   *form.Deriver
	assets    *Assets
	validator *Validator
	stamper   wrapper.Stamper
	measurer  render.Measurer
	filename  string
	logger    *zap.Logger
}

// NewService creates a new form service with all components
func NewService(opts Options) (*Service, error) {
	deriver, err := form.NewDeriver(opts.Rules, opts.DeriverOpts...)
	if err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	filename := strings.TrimSpace(opts.Filename)
	if filename == "" {
		filename = DefaultFilename
	}

	backend := wrapper.NewPDFCPULibrary()
	return &Service{
		deriver:   deriver,
		assets:    NewAssets(opts.Assets, opts.MaxFileSize, backend, backend),
		validator: NewValidator(opts.MaxFileSize),
		stamper:   backend,
		measurer:  backend,
		filename:  filename,
		logger:    logger,
	}, nil
}

// Preload loads the template, font and mapping ahead of the first request.
func (s *Service) Preload(ctx context.Context) error {
	return s.assets.Preload(ctx)
}

// Normalize runs alias resolution and every derivation without rendering.
func (s *Service) Normalize(rec form.Record) form.Result {
	return s.deriver.Normalize(rec)
}

// Generate normalizes the submission and stamps it onto the template.
// Entries that cannot be drawn are skipped; only asset and backend failures
// are returned as errors.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	assets, err := s.assets.get(ctx)
	if err != nil {
		return nil, err
	}

	res := s.deriver.Normalize(req.Record)
	view := render.View{
		Record: res.Record,
		Gated: func(field string) bool {
			return s.deriver.Gated(res, field)
		},
	}

	stamps, report := render.Layout(assets.table, assets.pages, view, assets.fonts, s.measurer)
	for _, skip := range report.Warnings {
		s.logger.Debug("placement skipped",
			zap.String("field", skip.Field),
			zap.Int("page", skip.PageNumber),
			zap.String("reason", skip.Error()))
	}
	counts := report.CountByType()
	s.logger.Debug("layout finished",
		zap.Int("stamps", len(stamps)),
		zap.String("summary", report.Summary()),
		zap.Int("out_of_range", counts[pdferrors.ErrorTypeOutOfRangePage]),
		zap.Int("invalid_placement", counts[pdferrors.ErrorTypeInvalidPlacement]),
		zap.Int("unresolved", counts[pdferrors.ErrorTypeUnresolvedField]))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := s.stamper.Stamp(assets.template, stamps, &out); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeRenderFailed, err)
	}

	mode := req.Mode
	if strings.TrimSpace(mode) == "" {
		mode = req.Record.Get(form.KeyMode)
	}

	return &GenerateResult{
		Data:        out.Bytes(),
		ContentType: ContentTypePDF,
		Disposition: Disposition(mode),
		Filename:    s.filename,
		Pages:       len(assets.pages),
		Stamps:      len(stamps),
		Skipped:     report.Warnings,
		Summary:     report.Summary(),
		SkipCounts:  counts,
	}, nil
}

// Plans lists the catalog with amounts formatted in won.
func (s *Service) Plans() []PlanInfo {
	plans := s.deriver.Catalog().List()
	out := make([]PlanInfo, 0, len(plans))
	for _, p := range plans {
		out = append(out, PlanInfo{
			Code:     p.Code,
			Title:    p.Title,
			Total:    form.FormatWon(p.Total),
			Monthly:  form.FormatWon(p.Monthly),
			Discount: form.FormatWon(p.Discount),
			Bill:     form.FormatWon(p.Bill),
		})
	}
	return out
}

// Inspect validates the template and computes where every mapping entry
// would be drawn, without any form data.
func (s *Service) Inspect(ctx context.Context) (*InspectResult, error) {
	paths := s.assets.Paths()
	result := &InspectResult{Template: s.validator.ValidateTemplate(paths.Template)}

	assets, err := s.assets.get(ctx)
	if err != nil {
		return result, err
	}
	result.Fonts = assets.fonts

	for _, p := range assets.table.Entries {
		result.Placements = append(result.Placements, placementReport(p, assets.pages))
	}
	return result, nil
}

func placementReport(p mapping.Placement, pages []render.PageSize) PlacementReport {
	r := PlacementReport{
		Field: p.Name,
		Page:  p.PageNumber(),
		Mode:  string(p.Mode),
		Size:  p.FontSize(),
	}
	mode, err := p.DrawMode()
	if err != nil {
		r.Skip = err.Error()
		return r
	}
	r.Mode = string(mode)

	if r.Page > len(pages) {
		r.Skip = fmt.Sprintf("page %d of %d", r.Page, len(pages))
		return r
	}
	page := pages[r.Page-1]
	x, y, err := p.Anchor(page.Width, page.Height)
	if err != nil {
		r.Skip = err.Error()
		return r
	}
	r.X, r.Y = x, y
	return r
}

// Disposition maps a requested mode onto a Content-Disposition type.
// Preview and print requests are shown inline; everything else downloads.
func Disposition(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "inline", "print":
		return DispositionInline
	default:
		return DispositionAttachment
	}
}
