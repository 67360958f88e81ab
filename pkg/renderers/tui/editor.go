package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-schemaforge/pkg/export"
	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/session"
	"github.com/goliatone/go-schemaforge/pkg/validation"
)

// Action is a main menu entry.
type Action int

// Menu entries, in display order.
const (
	ActionAddField Action = iota
	ActionAddProperty
	ActionEdit
	ActionToggleRequired
	ActionDelete
	ActionShowSchema
	ActionCopySchema
	ActionLint
	ActionReset
	ActionQuit
)

var actionLabels = []string{
	ActionAddField:       "Add field",
	ActionAddProperty:    "Add property to object",
	ActionEdit:           "Edit field",
	ActionToggleRequired: "Toggle required",
	ActionDelete:         "Delete field",
	ActionShowSchema:     "Show schema",
	ActionCopySchema:     "Copy schema to clipboard",
	ActionLint:           "Check field names",
	ActionReset:          "Remove all fields",
	ActionQuit:           "Quit",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionLabels) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionLabels[a]
}

// Editor runs a menu-driven editing session in the terminal.
type Editor struct {
	session  *session.Session
	driver   PromptDriver
	out      io.Writer
	theme    Theme
	pageSize int
	format   string
}

// New constructs a terminal editor over sess (survey driver by default).
func New(sess *session.Session, options ...Option) (*Editor, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	e := &Editor{
		session:  sess,
		theme:    DefaultTheme,
		pageSize: 12,
		format:   export.FormatJSON,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.driver == nil {
		e.driver = newSurveyDriver(e.out)
	}
	return e, nil
}

// Run loops over the main menu until the user quits or aborts. Edit errors
// are printed and the loop continues; prompt failures end the run.
func (e *Editor) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.printOutline(ctx); err != nil {
			return err
		}
		idx, err := e.driver.Select(ctx, SelectConfig{
			Message:  "What next?",
			Options:  actionLabels,
			PageSize: len(actionLabels),
		})
		if err != nil {
			return err
		}
		action := Action(idx)
		if action == ActionQuit {
			return nil
		}
		if err := e.Do(ctx, action); err != nil {
			return err
		}
	}
}

// Do runs one menu action. Only prompt and output failures are returned.
func (e *Editor) Do(ctx context.Context, action Action) error {
	switch action {
	case ActionAddField:
		node, err := e.session.AddRootField()
		return e.report(ctx, err, "added %s", node.Name)
	case ActionAddProperty:
		return e.addProperty(ctx)
	case ActionEdit:
		return e.edit(ctx)
	case ActionToggleRequired:
		target, ok, err := e.pick(ctx, "Toggle required on", nil)
		if err != nil || !ok {
			return err
		}
		return e.report(ctx, e.session.ToggleRequired(target.path), "toggled required on %s", target.node.Name)
	case ActionDelete:
		return e.delete(ctx)
	case ActionShowSchema:
		doc, err := e.session.Export(ctx, e.format)
		if err != nil {
			return e.report(ctx, err, "")
		}
		return e.driver.Info(ctx, strings.TrimRight(doc.String(), "\n"))
	case ActionCopySchema:
		// The session notifier reports the outcome.
		_ = e.session.Copy(ctx)
		return nil
	case ActionLint:
		return e.lint(ctx)
	case ActionReset:
		return e.reset(ctx)
	case ActionQuit:
		return nil
	default:
		return fmt.Errorf("tui: unknown action %d", int(action))
	}
}

func (e *Editor) addProperty(ctx context.Context) error {
	target, ok, err := e.pick(ctx, "Add property to", func(en entry) bool {
		return en.node.IsObject()
	})
	if err != nil || !ok {
		return err
	}
	node, err := e.session.AddProperty(target.path)
	return e.report(ctx, err, "added %s to %s", node.Name, target.node.Name)
}

func (e *Editor) edit(ctx context.Context) error {
	target, ok, err := e.pick(ctx, "Edit field", nil)
	if err != nil || !ok {
		return err
	}
	node := target.node

	name, err := e.driver.Input(ctx, InputConfig{
		Message: "Name",
		Default: node.Name,
	})
	if err != nil {
		return err
	}

	kinds := fieldtree.Kinds()
	options := make([]string, len(kinds))
	current := 0
	for i, kind := range kinds {
		options[i] = kind.String()
		if kind == node.Kind {
			current = i
		}
	}
	kindIdx, err := e.driver.Select(ctx, SelectConfig{
		Message:      "Kind",
		Options:      options,
		DefaultIndex: current,
	})
	if err != nil {
		return err
	}
	if kindIdx < 0 || kindIdx >= len(kinds) {
		return e.report(ctx, fieldtree.ErrInvalidKind, "")
	}

	description, err := e.driver.TextArea(ctx, TextAreaConfig{
		Message: "Description",
		Default: node.Description,
		Help:    "Leave empty to omit the description keyword.",
	})
	if err != nil {
		return err
	}

	kind := kinds[kindIdx]
	description = strings.TrimSpace(description)
	patch := fieldtree.Patch{
		Name:        &name,
		Kind:        &kind,
		Description: &description,
	}
	return e.report(ctx, e.session.Update(target.path, patch), "updated %s", name)
}

func (e *Editor) delete(ctx context.Context) error {
	target, ok, err := e.pick(ctx, "Delete field", nil)
	if err != nil || !ok {
		return err
	}
	confirmed, err := e.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Delete %s?", target.node.Name),
	})
	if err != nil || !confirmed {
		return err
	}
	err = e.session.Delete(target.path)
	if errors.Is(err, fieldtree.ErrItemNotDeletable) {
		return e.errorf(ctx, "array items cannot be removed, change the array's kind instead")
	}
	return e.report(ctx, err, "deleted %s", target.node.Name)
}

func (e *Editor) reset(ctx context.Context) error {
	total := fieldtree.Count(e.session.Forest())
	if total == 0 {
		return e.infof(ctx, "no fields to remove")
	}
	confirmed, err := e.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Remove all %d fields?", total),
	})
	if err != nil || !confirmed {
		return err
	}
	e.session.Reset()
	return e.infof(ctx, "removed %d fields", total)
}

func (e *Editor) lint(ctx context.Context) error {
	result := validation.Lint(e.session.Forest())
	if result.Valid {
		return e.infof(ctx, "no issues found")
	}
	for _, issue := range result.Issues {
		if err := e.errorf(ctx, "%s: %s", issue.Path, issue.Message); err != nil {
			return err
		}
	}
	return nil
}

// pick prompts for one field from the outline. ok is false when there is
// nothing to choose from.
func (e *Editor) pick(ctx context.Context, message string, keep func(entry) bool) (entry, bool, error) {
	entries := outline(e.session.Forest(), e.theme.Indent)
	if keep != nil {
		entries = filterEntries(entries, keep)
	}
	if len(entries) == 0 {
		return entry{}, false, e.infof(ctx, "no matching fields")
	}
	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:  message,
		Options:  labels(entries),
		PageSize: e.pageSize,
	})
	if err != nil {
		return entry{}, false, err
	}
	if idx < 0 || idx >= len(entries) {
		return entry{}, false, e.errorf(ctx, "invalid selection")
	}
	return entries[idx], true, nil
}

func (e *Editor) printOutline(ctx context.Context) error {
	entries := outline(e.session.Forest(), e.theme.Indent)
	if len(entries) == 0 {
		return e.infof(ctx, "(no fields)")
	}
	return e.driver.Info(ctx, strings.Join(labels(entries), "\n"))
}

func (e *Editor) report(ctx context.Context, err error, format string, args ...any) error {
	if err != nil {
		return e.errorf(ctx, "%v", err)
	}
	if format == "" {
		return nil
	}
	return e.infof(ctx, format, args...)
}

func (e *Editor) infof(ctx context.Context, format string, args ...any) error {
	return e.driver.Info(ctx, e.theme.InfoPrefix+fmt.Sprintf(format, args...))
}

func (e *Editor) errorf(ctx context.Context, format string, args ...any) error {
	return e.driver.Info(ctx, e.theme.ErrorPrefix+fmt.Sprintf(format, args...))
}
