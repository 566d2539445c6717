package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/kramify/internal/convert"
	"github.com/starford/kramify/internal/ledger"
	"github.com/starford/kramify/internal/pipeline"
	"github.com/starford/kramify/internal/testutil"
)

func testServer(t *testing.T, l ledger.Store) (*Server, string) {
	t.Helper()
	root, store := testutil.TestRoot(t)
	engine, err := convert.NewEngine()
	if err != nil {
		t.Fatal(err)
	}
	var opts []pipeline.Option
	if l != nil {
		opts = append(opts, pipeline.WithLedger(l))
	}
	svc := pipeline.NewService(engine, store, pipeline.Config{Generator: convert.MkDocs}, opts...)
	return New(svc, "test"), root
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "convert_markdown":
		result, err = srv.convertMarkdown(ctx, req)
	case "convert_site":
		result, err = srv.convertSite(ctx, req)
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "get_syntax_contract":
		result, err = srv.getSyntaxContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestConvertMarkdown_DefaultGenerator(t *testing.T) {
	srv, _ := testServer(t, nil)

	r := callTool(t, srv, "convert_markdown", map[string]any{"content": "![a](b.png)"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if got := resultText(r); got != `![a](b.png){: style="width:640px" }` {
		t.Errorf("result = %q", got)
	}
}

func TestConvertMarkdown_JekyllCallout(t *testing.T) {
	srv, _ := testServer(t, nil)

	r := callTool(t, srv, "convert_markdown", map[string]any{
		"content":   "> [!warning]\n> careful\n",
		"generator": "jekyll",
	})
	want := "> careful\n{: .prompt-warning }\n"
	if got := resultText(r); got != want {
		t.Errorf("result = %q, want %q", got, want)
	}
}

func TestConvertMarkdown_Index(t *testing.T) {
	srv, _ := testServer(t, nil)

	r := callTool(t, srv, "convert_markdown", map[string]any{
		"content": "[Read & Watch List](r.md)\n[Keep](k.md)\n",
		"index":   true,
	})
	if got := resultText(r); got != "[Keep](k.md)\n" {
		t.Errorf("result = %q", got)
	}
}

func TestConvertMarkdown_Errors(t *testing.T) {
	srv, _ := testServer(t, nil)

	if r := callTool(t, srv, "convert_markdown", map[string]any{}); !r.IsError {
		t.Error("expected error for missing content")
	}
	r := callTool(t, srv, "convert_markdown", map[string]any{"content": "x", "generator": "hugo"})
	if !r.IsError {
		t.Error("expected error for unknown generator")
	}
}

func TestConvertSiteAndListDocuments(t *testing.T) {
	srv, root := testServer(t, testutil.TestLedger(t))
	testutil.WriteDocument(t, root, "a.md", "[x](https://example.com)\n")

	r := callTool(t, srv, "convert_site", map[string]any{})
	if r.IsError {
		t.Fatalf("convert_site error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), `"written": 1`) {
		t.Errorf("summary = %s", resultText(r))
	}

	r = callTool(t, srv, "list_documents", map[string]any{})
	if !strings.Contains(resultText(r), `"path": "a.md"`) {
		t.Errorf("list = %s", resultText(r))
	}
}

func TestListDocuments_Empty(t *testing.T) {
	srv, _ := testServer(t, testutil.TestLedger(t))
	r := callTool(t, srv, "list_documents", map[string]any{})
	if resultText(r) != "no documents converted yet" {
		t.Errorf("list = %q", resultText(r))
	}
}

func TestListDocuments_LedgerDisabled(t *testing.T) {
	srv, _ := testServer(t, nil)
	if r := callTool(t, srv, "list_documents", map[string]any{}); !r.IsError {
		t.Error("expected error when ledger is disabled")
	}
}

func TestSyntaxContract(t *testing.T) {
	srv, _ := testServer(t, nil)
	text := resultText(callTool(t, srv, "get_syntax_contract", nil))
	for _, want := range []string{".prompt-tip", `style="width:Npx"`, "{: ... }"} {
		if !strings.Contains(text, want) {
			t.Errorf("contract missing %q", want)
		}
	}

	contents, err := srv.readSyntaxResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != SyntaxURI || tc.Text != SyntaxContract {
		t.Errorf("resource = %+v", contents[0])
	}
}
