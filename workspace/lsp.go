package workspace

import (
	"bytes"
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dhamidi/parsekit/grammar"
	"github.com/dhamidi/parsekit/scanner"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "parsekit"

// LSPServer publishes the syntax errors of open documents. The grammar file
// is watched and every open document is checked again when it changes.
type LSPServer struct {
	workspace *Workspace
	handler   protocol.Handler
	server    *server.Server
	watcher   *GrammarWatcher
	version   string
	log       commonlog.Logger

	mu     sync.Mutex
	notify glsp.NotifyFunc
}

func NewLSPServer(ws *Workspace, version string) *LSPServer {
	ls := &LSPServer{
		workspace: ws,
		version:   version,
		log:       commonlog.GetLogger("parsekit.lsp"),
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)
	ls.watcher = NewGrammarWatcher(ws, ls.publishAll)

	return ls
}

// RunStdio serves requests on standard input and output until the client
// disconnects.
func (ls *LSPServer) RunStdio() error {
	ls.watcher.Start()
	defer ls.watcher.Stop()
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.mu.Lock()
	ls.notify = ctx.Notify
	ls.mu.Unlock()
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := ls.workspace.UpdateFile(string(params.TextDocument.URI), []byte(params.TextDocument.Text))
	publish(ctx.Notify, doc)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		doc := ls.workspace.UpdateFile(string(params.TextDocument.URI), []byte(whole.Text))
		publish(ctx.Notify, doc)
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.workspace.RemoveFile(string(params.TextDocument.URI))
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	var doc *Document
	if params.Text != nil {
		doc = ls.workspace.UpdateFile(uri, []byte(*params.Text))
	} else {
		var err error
		doc, err = ls.workspace.ScanFile(uriToPath(uri))
		if err != nil {
			ls.log.Warningf("read %s: %s", uri, err)
			return nil
		}
	}
	publish(ctx.Notify, doc)
	return nil
}

// publishAll sends the diagnostics of every open document. It does nothing
// before the client finished initializing.
func (ls *LSPServer) publishAll() {
	ls.mu.Lock()
	notify := ls.notify
	ls.mu.Unlock()
	if notify == nil {
		return
	}
	for _, doc := range ls.workspace.Documents() {
		publish(notify, doc)
	}
}

func publish(notify glsp.NotifyFunc, doc *Document) {
	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(doc.URI),
		Diagnostics: Diagnostics(doc),
	})
}

// Diagnostics converts the parse error of doc. A syntax error is reported on
// the character where the document stopped matching, with the column counted
// in UTF-16 code units; other errors, like a broken grammar, at the start of
// the document.
func Diagnostics(doc *Document) []protocol.Diagnostic {
	if doc.ParseErr == nil {
		return []protocol.Diagnostic{}
	}

	var start protocol.Position
	width := 1
	var se *grammar.SyntaxError
	if errors.As(doc.ParseErr, &se) {
		start, width = lspPosition(doc.Content, se.Pos)
	}
	end := start
	end.Character += protocol.UInteger(width)

	severity := protocol.DiagnosticSeverityError
	source := lsName
	return []protocol.Diagnostic{{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Source:   &source,
		Message:  doc.ParseErr.Error(),
	}}
}

// lspPosition converts pos to the line and UTF-16 character the protocol
// expects, with the UTF-16 width of the character at pos.
func lspPosition(content []byte, pos scanner.Position) (protocol.Position, int) {
	offset := min(pos.Offset, len(content))
	lineStart := bytes.LastIndexByte(content[:offset], '\n') + 1

	character := 0
	for _, r := range string(content[lineStart:offset]) {
		character += utf16.RuneLen(r)
	}
	width := 1
	if offset < len(content) {
		r, _ := utf8.DecodeRune(content[offset:])
		width = utf16.RuneLen(r)
	}
	return protocol.Position{
		Line:      protocol.UInteger(pos.Line - 1),
		Character: protocol.UInteger(character),
	}, width
}

func uriToPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return uri
		}
		return filepath.Clean(parsed.Path)
	}
	return uri
}

func pathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
