package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-schemaforge/pkg/export"
	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/jsonschema"
)

// Messages used for copy notices.
const (
	CopiedMessage     = "JSON Schema copied to clipboard"
	CopyFailedMessage = "Could not copy JSON Schema"
)

// Snapshot is an immutable view of the session at one version.
type Snapshot struct {
	Version uint64
	Forest  fieldtree.Forest
}

// Option configures a Session.
type Option func(*Session)

// WithEditor overrides the editor used for mutations.
func WithEditor(editor *fieldtree.Editor) Option {
	return func(s *Session) {
		if editor != nil {
			s.editor = editor
		}
	}
}

// WithCompiler overrides the compiler used by Schema and the default exporters.
func WithCompiler(compiler *jsonschema.Compiler) Option {
	return func(s *Session) {
		if compiler != nil {
			s.compiler = compiler
		}
	}
}

// WithExporters replaces the export registry.
func WithExporters(registry *export.Registry) Option {
	return func(s *Session) {
		if registry != nil {
			s.exporters = registry
		}
	}
}

// WithClipboard sets the copy sink. Pass nil to disable copying.
func WithClipboard(clipboard Clipboard) Option {
	return func(s *Session) {
		s.clipboard = clipboard
	}
}

// WithNotifier sets the notice sink.
func WithNotifier(notifier Notifier) Option {
	return func(s *Session) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

// WithForest seeds the session with an existing forest.
func WithForest(forest fieldtree.Forest) Option {
	return func(s *Session) {
		s.forest = forest
	}
}

// WithCopyFormat selects the exporter used by Copy. Defaults to json.
func WithCopyFormat(format string) Option {
	return func(s *Session) {
		if format != "" {
			s.copyFormat = format
		}
	}
}

// Session serialises writers around the current forest and fans out change
// notifications to subscribers.
type Session struct {
	mu      sync.Mutex
	forest  fieldtree.Forest
	version uint64

	editor     *fieldtree.Editor
	compiler   *jsonschema.Compiler
	exporters  *export.Registry
	clipboard  Clipboard
	notifier   Notifier
	copyFormat string

	pubMu  sync.Mutex
	subMu  sync.RWMutex
	subs   map[int]func(Snapshot)
	nextID int
}

// New constructs a Session with an empty forest, the system clipboard and a
// silent notifier.
func New(options ...Option) *Session {
	s := &Session{
		editor:     fieldtree.NewEditor(),
		compiler:   jsonschema.New(),
		clipboard:  SystemClipboard{},
		notifier:   nopNotifier{},
		copyFormat: export.FormatJSON,
		subs:       make(map[int]func(Snapshot)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.exporters == nil {
		s.exporters = export.NewDefaultRegistry(s.compiler)
	}
	return s
}

// Snapshot returns the current forest and its version.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Version: s.version, Forest: s.forest}
}

// Forest returns the current forest.
func (s *Session) Forest() fieldtree.Forest {
	return s.Snapshot().Forest
}

// Exporters exposes the registry used by Export.
func (s *Session) Exporters() *export.Registry {
	return s.exporters
}

// AddRootField appends a default field to the root.
func (s *Session) AddRootField() (fieldtree.Node, error) {
	var created fieldtree.Node
	err := s.mutate(func(forest fieldtree.Forest) (fieldtree.Forest, error) {
		next, node := s.editor.AddRootField(forest)
		created = node
		return next, nil
	})
	return created, err
}

// AddProperty appends a default field to the object at parent.
func (s *Session) AddProperty(parent fieldtree.Path) (fieldtree.Node, error) {
	var created fieldtree.Node
	err := s.mutate(func(forest fieldtree.Forest) (fieldtree.Forest, error) {
		next, node, err := s.editor.AddProperty(forest, parent)
		created = node
		return next, err
	})
	return created, err
}

// Update merges patch into the node at path.
func (s *Session) Update(path fieldtree.Path, patch fieldtree.Patch) error {
	return s.mutate(func(forest fieldtree.Forest) (fieldtree.Forest, error) {
		return s.editor.UpdateNode(forest, path, patch)
	})
}

// ToggleRequired flips the required flag of the node at path.
func (s *Session) ToggleRequired(path fieldtree.Path) error {
	return s.mutate(func(forest fieldtree.Forest) (fieldtree.Forest, error) {
		return s.editor.ToggleRequired(forest, path)
	})
}

// Delete removes the node at path.
func (s *Session) Delete(path fieldtree.Path) error {
	return s.mutate(func(forest fieldtree.Forest) (fieldtree.Forest, error) {
		return s.editor.DeleteNode(forest, path)
	})
}

// Reset discards every field.
func (s *Session) Reset() {
	_ = s.mutate(func(fieldtree.Forest) (fieldtree.Forest, error) {
		return fieldtree.Forest{}, nil
	})
}

// mutate applies fn to the current forest. Failed edits leave the session
// untouched and notify nobody. pubMu is taken before mu is released so
// subscribers see versions in order.
func (s *Session) mutate(fn func(fieldtree.Forest) (fieldtree.Forest, error)) error {
	s.mu.Lock()
	next, err := fn(s.forest)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.forest = next
	s.version++
	snap := Snapshot{Version: s.version, Forest: next}
	s.pubMu.Lock()
	s.mu.Unlock()

	defer s.pubMu.Unlock()
	s.publish(snap)
	return nil
}

// Schema compiles the current forest.
func (s *Session) Schema() *jsonschema.Schema {
	return s.compiler.Compile(s.Forest())
}

// Export serializes the current forest with the named exporter.
func (s *Session) Export(ctx context.Context, format string) (export.Document, error) {
	exporter, err := s.exporters.Get(format)
	if err != nil {
		return export.Document{}, err
	}
	doc, err := exporter.Export(ctx, s.Forest())
	if err != nil {
		return export.Document{}, fmt.Errorf("session: export %s: %w", format, err)
	}
	return doc, nil
}

// Copy exports the current schema and writes it to the clipboard. The
// notifier receives a success notice, or an error notice when the export or
// the clipboard write fails; the error is also returned.
func (s *Session) Copy(ctx context.Context) error {
	if s.clipboard == nil {
		s.notifyFailure(ctx, ErrNoClipboard)
		return ErrNoClipboard
	}
	doc, err := s.Export(ctx, s.copyFormat)
	if err != nil {
		err = fmt.Errorf("session: copy schema: %w", err)
		s.notifyFailure(ctx, err)
		return err
	}
	if err := s.clipboard.WriteText(ctx, doc.String()); err != nil {
		err = fmt.Errorf("session: copy schema: %w", err)
		s.notifyFailure(ctx, err)
		return err
	}
	s.notifier.Notify(ctx, Notice{Level: NoticeSuccess, Message: CopiedMessage})
	return nil
}

func (s *Session) notifyFailure(ctx context.Context, err error) {
	s.notifier.Notify(ctx, Notice{
		Level:   NoticeError,
		Message: fmt.Sprintf("%s: %v", CopyFailedMessage, err),
		Err:     err,
	})
}

// Subscribe registers fn to run after every successful edit. The returned
// function removes the subscription. Callbacks run on the editing goroutine
// while later edits wait, so they must return quickly and must not edit the
// session.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Session) publish(snap Snapshot) {
	s.subMu.RLock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// CompileSnapshot compiles the forest held by snap, typically one delivered
// to a subscriber.
func (s *Session) CompileSnapshot(snap Snapshot) *jsonschema.Schema {
	return s.compiler.Compile(snap.Forest)
}
