package session

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/atotto/clipboard"
)

// Clipboard receives copied schema text.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(ctx context.Context, text string) error

func (f ClipboardFunc) WriteText(ctx context.Context, text string) error {
	return f(ctx, text)
}

// NoticeLevel classifies a Notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-facing message emitted after a copy attempt.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	Err     error       `json:"-"`
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, notice Notice)

func (f NotifierFunc) Notify(ctx context.Context, notice Notice) {
	f(ctx, notice)
}

// SystemClipboard writes to the operating system clipboard.
type SystemClipboard struct{}

// WriteText copies text unless ctx is already done.
func (SystemClipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if clipboard.Unsupported {
		return fmt.Errorf("session: system clipboard unsupported on this platform")
	}
	return clipboard.WriteAll(text)
}

// WriterNotifier prints notices as single lines.
type WriterNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriterNotifier returns a notifier printing to out.
func NewWriterNotifier(out io.Writer) *WriterNotifier {
	return &WriterNotifier{out: out}
}

func (n *WriterNotifier) Notify(_ context.Context, notice Notice) {
	if n == nil || n.out == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "[%s] %s\n", notice.Level, notice.Message)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notice) {}
