// Package workspace keeps documents parsed against a grammar and serves
// their syntax errors to editors over the Language Server Protocol.
package workspace

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/dhamidi/parsekit/grammar"
	"github.com/tliron/commonlog"
)

// Document is an open document and the result of its last parse.
type Document struct {
	URI      string
	Path     string
	Content  []byte
	Tree     *grammar.Node
	ParseErr error
}

type Option func(*Workspace)

// WithMode sets how documents are parsed. The default is grammar.Compiled.
func WithMode(mode grammar.Mode) Option {
	return func(w *Workspace) {
		w.mode = mode
	}
}

// WithCache shares a grammar cache between workspaces.
func WithCache(cache *grammar.Cache) Option {
	return func(w *Workspace) {
		w.cache = cache
	}
}

// Workspace holds the grammar and the open documents. It is safe for
// concurrent use.
type Workspace struct {
	mu          sync.RWMutex
	grammarPath string
	start       string
	mode        grammar.Mode
	cache       *grammar.Cache
	grammar     *grammar.Grammar
	grammarErr  error
	docs        map[string]*Document
	log         commonlog.Logger
}

func New(grammarPath, start string, opts ...Option) (*Workspace, error) {
	w := &Workspace{
		grammarPath: grammarPath,
		start:       start,
		mode:        grammar.Compiled,
		docs:        make(map[string]*Document),
		log:         commonlog.GetLogger("parsekit.workspace"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.cache == nil {
		cache, err := grammar.NewCache(8)
		if err != nil {
			return nil, err
		}
		w.cache = cache
	}
	return w, nil
}

func (w *Workspace) GrammarPath() string {
	return w.grammarPath
}

// LoadGrammar reads the grammar file again and parses every open document
// with it. If the grammar does not build, the error is kept and reported for
// every document until a later load succeeds.
func (w *Workspace) LoadGrammar() error {
	g, err := w.readGrammar()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.grammar, w.grammarErr = g, err
	if err != nil {
		w.log.Errorf("load grammar %s: %s", w.grammarPath, err)
	} else {
		w.log.Infof("loaded grammar %s", w.grammarPath)
	}
	for uri, doc := range w.docs {
		next := &Document{URI: doc.URI, Path: doc.Path, Content: doc.Content}
		w.parseLocked(next)
		w.docs[uri] = next
	}
	return err
}

func (w *Workspace) readGrammar() (*grammar.Grammar, error) {
	src, err := os.ReadFile(w.grammarPath)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	return w.cache.Load(w.grammarPath, src, w.start)
}

// Grammar returns the current grammar and the error of the last load.
func (w *Workspace) Grammar() (*grammar.Grammar, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.grammar, w.grammarErr
}

// ScanFile reads path from disk and updates its document.
func (w *Workspace) ScanFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return w.UpdateFile(pathToURI(path), content), nil
}

// UpdateFile replaces the content of the document at uri and parses it.
func (w *Workspace) UpdateFile(uri string, content []byte) *Document {
	w.mu.Lock()
	defer w.mu.Unlock()

	doc := &Document{
		URI:     uri,
		Path:    uriToPath(uri),
		Content: content,
	}
	w.parseLocked(doc)
	w.docs[uri] = doc
	return doc
}

func (w *Workspace) parseLocked(doc *Document) {
	switch {
	case w.grammarErr != nil:
		doc.ParseErr = fmt.Errorf("grammar %s: %w", w.grammarPath, w.grammarErr)
	case w.grammar == nil:
		doc.ParseErr = fmt.Errorf("grammar %s is not loaded", w.grammarPath)
	default:
		doc.Tree, doc.ParseErr = w.grammar.Parse(doc.Path, string(doc.Content), w.mode)
	}
	w.log.Debugf("parsed %s: %v", doc.URI, doc.ParseErr)
}

func (w *Workspace) RemoveFile(uri string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.docs, uri)
}

func (w *Workspace) GetFile(uri string) *Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.docs[uri]
}

// Documents returns the open documents sorted by URI.
func (w *Workspace) Documents() []*Document {
	w.mu.RLock()
	defer w.mu.RUnlock()

	docs := make([]*Document, 0, len(w.docs))
	for _, doc := range w.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].URI < docs[j].URI })
	return docs
}
