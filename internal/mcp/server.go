package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/a3tai/form-filler/internal/config"
	"github.com/a3tai/form-filler/internal/descriptions"
	"github.com/a3tai/form-filler/internal/form"
	"github.com/a3tai/form-filler/internal/notes"
	"github.com/a3tai/form-filler/internal/pdf"
	pdferrors "github.com/a3tai/form-filler/internal/pdf/errors"
)

// DocumentURIPrefix prefixes the URI of generated documents returned as
// embedded resources.
const DocumentURIPrefix = "form-filler://documents/"

var errFieldsNotObject = errors.New("fields must be a JSON object")

// FormService is the part of pdf.Service the tools call.
type FormService interface {
	Generate(ctx context.Context, req pdf.GenerateRequest) (*pdf.GenerateResult, error)
	Normalize(rec form.Record) form.Result
	Plans() []pdf.PlanInfo
	Inspect(ctx context.Context) (*pdf.InspectResult, error)
}

// Server represents the MCP server instance
type Server struct {
	config      *config.Config
	formService FormService
	mcpServer   *server.MCPServer
	logger      *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, formService FormService, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if formService == nil {
		return nil, fmt.Errorf("formService cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // the tool set is fixed
		server.WithRecovery(),
	)

	s := &Server{
		config:      cfg,
		formService: formService,
		mcpServer:   mcpServer,
		logger:      logger,
	}
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	generateTool := mcp.NewTool(
		"form_generate",
		mcp.WithDescription(descriptions.GetToolDescription("form_generate")),
		mcp.WithObject("fields",
			mcp.Description("Submitted form fields keyed by any known spelling. A JSON string is accepted too."),
		),
		mcp.WithString("mode",
			mcp.Description("inline or print to preview; anything else downloads"),
		),
	)
	s.mcpServer.AddTool(generateTool, s.handleFormGenerate)

	normalizeTool := mcp.NewTool(
		"form_normalize",
		mcp.WithDescription(descriptions.GetToolDescription("form_normalize")),
		mcp.WithObject("fields",
			mcp.Required(),
			mcp.Description("Submitted form fields keyed by any known spelling"),
		),
	)
	s.mcpServer.AddTool(normalizeTool, s.handleFormNormalize)

	plansTool := mcp.NewTool(
		"form_plans",
		mcp.WithDescription(descriptions.GetToolDescription("form_plans")),
	)
	s.mcpServer.AddTool(plansTool, s.handleFormPlans)

	notesTool := mcp.NewTool(
		"form_notes",
		mcp.WithDescription(descriptions.GetToolDescription("form_notes")),
		mcp.WithString("lang",
			mcp.Description("Chip code, language tag or Accept-Language value"),
		),
		mcp.WithString("kind",
			mcp.Description("spelling or handwriting; every kind when empty"),
			mcp.Enum(string(notes.KindHandwriting), string(notes.KindSpelling)),
		),
	)
	s.mcpServer.AddTool(notesTool, s.handleFormNotes)

	inspectTool := mcp.NewTool(
		"form_inspect",
		mcp.WithDescription(descriptions.GetToolDescription("form_inspect")),
	)
	s.mcpServer.AddTool(inspectTool, s.handleFormInspect)

	serverInfoTool := mcp.NewTool(
		"form_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("form_server_info")),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleFormServerInfo)
}

// Handler functions
func (s *Server) handleFormGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	rec, err := recordArgument(args["fields"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.formService.Generate(ctx, pdf.GenerateRequest{
		Record: rec,
		Mode:   request.GetString("mode", ""),
	})
	if err != nil {
		s.logger.Error("generate failed", zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultResource(s.formatGenerateResult(result), mcp.BlobResourceContents{
		URI:      DocumentURIPrefix + result.Filename,
		MIMEType: result.ContentType,
		Blob:     base64.StdEncoding.EncodeToString(result.Data),
	}), nil
}

func (s *Server) handleFormNormalize(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if _, ok := args["fields"]; !ok {
		return mcp.NewToolResultError("required argument \"fields\" not found"), nil
	}
	rec, err := recordArgument(args["fields"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := json.MarshalIndent(s.formService.Normalize(rec), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleFormPlans(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatPlans(s.formService.Plans())), nil
}

func (s *Server) handleFormNotes(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lang := request.GetString("lang", "")
	kind := strings.TrimSpace(request.GetString("kind", ""))

	list := notes.All(lang)
	if kind != "" {
		note, err := notes.Lookup(notes.Kind(kind), lang)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%v: %s", err, kind)), nil
		}
		list = []notes.Note{note}
	}

	var text strings.Builder
	for _, n := range list {
		fmt.Fprintf(&text, "[%s/%s] %s\n", n.Kind, n.Lang, n.Text)
	}
	return mcp.NewToolResultText(text.String()), nil
}

func (s *Server) handleFormInspect(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.formService.Inspect(ctx)
	if err != nil && result == nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := s.formatInspectResult(result)
	if err != nil {
		text += fmt.Sprintf("\nAssets failed to load: %v\n", err)
		return mcp.NewToolResultError(text), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleFormServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatServerInfo()), nil
}

// recordArgument accepts the fields argument as an object or as a JSON
// string holding one. A missing argument is an empty submission.
func recordArgument(v any) (form.Record, error) {
	switch fields := v.(type) {
	case nil:
		return form.Record{}, nil
	case map[string]any:
		return form.FromRaw(fields), nil
	case string:
		if strings.TrimSpace(fields) == "" {
			return form.Record{}, nil
		}
		var raw map[string]any
		if err := json.Unmarshal([]byte(fields), &raw); err != nil || raw == nil {
			return nil, errFieldsNotObject
		}
		return form.FromRaw(raw), nil
	default:
		return nil, errFieldsNotObject
	}
}

// Formatting methods
func (s *Server) formatGenerateResult(result *pdf.GenerateResult) string {
	text := fmt.Sprintf("Generated %s (%d bytes)\n", result.Filename, len(result.Data))
	text += fmt.Sprintf("Disposition: %s\n", result.Disposition)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Fields drawn: %d\n", result.Stamps)

	skipped := 0
	for _, skip := range result.Skipped {
		if skip.Type == pdferrors.ErrorTypeUnresolvedField {
			continue
		}
		if skipped == 0 {
			text += "\nSkipped placements:\n"
		}
		skipped++
		text += fmt.Sprintf("  • %s: %s\n", skip.Field, skip.Error())
	}
	return text
}

func (s *Server) formatPlans(plans []pdf.PlanInfo) string {
	if len(plans) == 0 {
		return "No plans configured"
	}
	text := fmt.Sprintf("%d plan(s)\n", len(plans))
	for i, p := range plans {
		text += fmt.Sprintf("\n%d. %s (%s)\n", i+1, p.Title, p.Code)
		text += fmt.Sprintf("   Total discount: %s\n", p.Total)
		text += fmt.Sprintf("   Monthly fee: %s\n", p.Monthly)
		text += fmt.Sprintf("   Plan discount: %s\n", p.Discount)
		text += fmt.Sprintf("   Monthly bill: %s\n", p.Bill)
	}
	return text
}

func (s *Server) formatInspectResult(result *pdf.InspectResult) string {
	tpl := result.Template
	text := fmt.Sprintf("Template: %s\n", tpl.Path)
	if !tpl.Valid {
		text += fmt.Sprintf("Valid: no (%s)\n", tpl.Message)
	} else {
		text += "Valid: yes\n"
		text += fmt.Sprintf("Size: %d bytes\n", tpl.Size)
		text += fmt.Sprintf("Pages: %d\n", tpl.PageCount)
		for i, p := range tpl.Pages {
			text += fmt.Sprintf("  %d. %.2f x %.2f pt\n", i+1, p.Width, p.Height)
		}
	}
	for _, w := range tpl.Warnings {
		text += fmt.Sprintf("Warning: %s\n", w)
	}

	if result.Fonts.Unicode != "" {
		text += fmt.Sprintf("\nFonts: %s (values), %s (check marks)\n", result.Fonts.Unicode, result.Fonts.Latin)
	}
	if len(result.Placements) > 0 {
		text += fmt.Sprintf("\nPlacements (%d):\n", len(result.Placements))
		for _, p := range result.Placements {
			if p.Skip != "" {
				text += fmt.Sprintf("  %s p%d %s: skipped (%s)\n", p.Field, p.Page, p.Mode, p.Skip)
				continue
			}
			text += fmt.Sprintf("  %s p%d %s: (%.2f, %.2f) %.0fpt\n", p.Field, p.Page, p.Mode, p.X, p.Y, p.Size)
		}
	}
	return text
}

func (s *Server) formatServerInfo() string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("📄 Template: %s\n", s.config.TemplatePath)
	text += fmt.Sprintf("🗺️  Mapping: %s\n", s.config.MappingPath)
	if s.config.FontPath != "" {
		text += fmt.Sprintf("🔤 Font: %s\n", s.config.FontPath)
	}
	text += fmt.Sprintf("📏 Max Template Size: %d MB\n", s.config.MaxFileSize/(1024*1024))

	text += "\n🛠️  Available Tools:\n"
	for _, name := range descriptions.GetAllToolNames() {
		desc := descriptions.GetToolDescription(name)
		if i := strings.IndexByte(desc, '\n'); i >= 0 {
			desc = desc[:i]
		}
		text += fmt.Sprintf("• %s: %s\n", name, desc)
	}
	return text
}

// Run serves MCP over stdin and stdout until ctx is done or stdin closes.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve serves MCP over the given streams.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	if s.config.IsDebug() {
		s.logger.Debug("starting MCP server on stdio",
			zap.String("template", s.config.TemplatePath),
			zap.String("mapping", s.config.MappingPath))
	}

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
