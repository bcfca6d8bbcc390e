package mcp

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/a3tai/form-filler/internal/pdf"
	"github.com/a3tai/form-filler/internal/pdf/pdftest"
)

func newIntegrationServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	cfg := testConfig()
	cfg.TemplatePath = filepath.Join(dir, "template.pdf")
	cfg.MappingPath = filepath.Join(dir, "mapping.json")
	if err := os.WriteFile(cfg.TemplatePath, pdftest.Document(), 0o600); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}
	mapping := `{"cust_name": [{"page": 1, "xPct": 10, "yPct": 80}], "plan": [{"page": 1, "x": 40, "y": 120}]}`
	if err := os.WriteFile(cfg.MappingPath, []byte(mapping), 0o600); err != nil {
		t.Fatalf("failed to write mapping: %v", err)
	}

	svc, err := pdf.NewService(pdf.Options{
		Assets:      pdf.AssetPaths{Template: cfg.TemplatePath, Mapping: cfg.MappingPath},
		MaxFileSize: cfg.MaxFileSize,
	})
	if err != nil {
		t.Fatalf("failed to create form service: %v", err)
	}

	server, err := NewServer(cfg, svc, nil)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return server
}

func TestServerIntegration_Generate(t *testing.T) {
	server := newIntegrationServer(t)

	result, err := server.handleFormGenerate(context.Background(), callRequest(map[string]interface{}{
		"fields": map[string]interface{}{"subscriber_name": "PARK JIMIN", "plan_code": "WEL1"},
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("generate failed: %s", extractTextFromResult(result))
	}

	text := extractTextFromResult(result)
	if !strings.Contains(text, "Fields drawn: 2") || !strings.Contains(text, "Disposition: attachment") {
		t.Errorf("unexpected summary:\n%s", text)
	}

	blob := extractBlobFromResult(result)
	if blob == nil {
		t.Fatal("result should embed the document")
	}
	data, err := base64.StdEncoding.DecodeString(blob.Blob)
	if err != nil {
		t.Fatalf("blob is not base64: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF-") {
		t.Errorf("embedded document is not a PDF: %q", data[:min(len(data), 16)])
	}
}

func TestServerIntegration_Inspect(t *testing.T) {
	server := newIntegrationServer(t)

	result, err := server.handleFormInspect(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("inspect failed: %s", extractTextFromResult(result))
	}
	text := extractTextFromResult(result)
	for _, want := range []string{"Valid: yes", "Pages: 1", "595.00 x 842.00 pt", "Helvetica", "plan p1 text: (40.00, 712.00) 10pt"} {
		if !strings.Contains(text, want) {
			t.Errorf("inspect missing %q:\n%s", want, text)
		}
	}
}

func TestServerIntegration_Stdio(t *testing.T) {
	server := newIntegrationServer(t)

	inReader, inWriter := io.Pipe()
	outReader, outWriter := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, inReader, outWriter)
	}()

	responses := bufio.NewScanner(outReader)
	responses.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	call := func(request string) map[string]interface{} {
		t.Helper()
		if _, err := io.WriteString(inWriter, request+"\n"); err != nil {
			t.Fatalf("failed to write request: %v", err)
		}
		if !responses.Scan() {
			t.Fatalf("no response: %v", responses.Err())
		}
		var msg map[string]interface{}
		if err := json.Unmarshal(responses.Bytes(), &msg); err != nil {
			t.Fatalf("invalid response %q: %v", responses.Text(), err)
		}
		return msg
	}

	initialize := call(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test-client","version":"1.0.0"}}}`)
	initResult, _ := initialize["result"].(map[string]interface{})
	info, _ := initResult["serverInfo"].(map[string]interface{})
	if info["name"] != "test-server" {
		t.Errorf("serverInfo = %v", initResult["serverInfo"])
	}

	list := call(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	listResult, _ := list["result"].(map[string]interface{})
	tools, _ := listResult["tools"].([]interface{})
	names := make(map[string]bool)
	for _, tool := range tools {
		if m, ok := tool.(map[string]interface{}); ok {
			names[m["name"].(string)] = true
		}
	}
	for _, want := range []string{"form_generate", "form_normalize", "form_plans", "form_notes", "form_inspect", "form_server_info"} {
		if !names[want] {
			t.Errorf("tool %s not listed (got %v)", want, names)
		}
	}

	cancel()
	inWriter.Close()
	// Unblock a pending write, if any.
	go func() { _, _ = io.Copy(io.Discard, outReader) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
