package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/integrixs/fieldtree/pkg/editor"
	"github.com/integrixs/fieldtree/pkg/model"
	"github.com/integrixs/fieldtree/pkg/render"
	"github.com/integrixs/fieldtree/pkg/render/outline"
)

// Menu entries in display order. Tests script Select answers by these
// indices.
const (
	ActionAddRoot = iota
	ActionAddChild
	ActionEdit
	ActionRemove
	ActionMove
	ActionDuplicate
	ActionUndo
	ActionRedo
	ActionLint
	ActionSave
	ActionQuit
)

var actionLabels = []string{
	ActionAddRoot:   "Add root field",
	ActionAddChild:  "Add child field",
	ActionEdit:      "Edit field",
	ActionRemove:    "Remove field",
	ActionMove:      "Move field",
	ActionDuplicate: "Duplicate field",
	ActionUndo:      "Undo",
	ActionRedo:      "Redo",
	ActionLint:      "Lint",
	ActionSave:      "Save and quit",
	ActionQuit:      "Quit without saving",
}

const emptyTreeMessage = "The tree has no fields yet."

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithRenderer overrides the renderer used to print the tree between edits.
func WithRenderer(renderer render.Renderer) EditorOption {
	return func(e *Editor) {
		if renderer != nil {
			e.renderer = renderer
		}
	}
}

// WithTitle sets the heading printed above the tree.
func WithTitle(title string) EditorOption {
	return func(e *Editor) {
		e.title = strings.TrimSpace(title)
	}
}

// WithEditorLogger overrides the logger; defaults to the logrus standard
// logger.
func WithEditorLogger(logger logrus.FieldLogger) EditorOption {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Editor drives an editor.Session from a prompt Driver: it prints the tree,
// asks for an action and applies it until the user saves or quits.
type Editor struct {
	session  *editor.Session
	driver   Driver
	renderer render.Renderer
	title    string
	logger   logrus.FieldLogger
}

// NewEditor wires session and driver together. The plain-text outline
// renderer is used unless WithRenderer overrides it.
func NewEditor(session *editor.Session, driver Driver, options ...EditorOption) (*Editor, error) {
	if session == nil {
		return nil, ErrNoSession
	}
	if driver == nil {
		return nil, errors.New("prompt: driver is required")
	}
	e := &Editor{
		session: session,
		driver:  driver,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.renderer == nil {
		renderer, err := outline.New()
		if err != nil {
			return nil, fmt.Errorf("prompt: build outline renderer: %w", err)
		}
		e.renderer = renderer
	}
	return e, nil
}

// Run loops until the user picks save (true) or quit (false). Driver errors,
// ErrAborted included, end the loop and are returned as is.
func (e *Editor) Run(ctx context.Context) (bool, error) {
	if err := e.show(ctx); err != nil {
		return false, err
	}
	for {
		choice, err := e.driver.Select(ctx, SelectConfig{
			Message:  "Action",
			Options:  actionLabels,
			PageSize: len(actionLabels),
		})
		if err != nil {
			return false, err
		}
		if choice < 0 || choice >= len(actionLabels) {
			return false, fmt.Errorf("prompt: unknown action %d", choice)
		}
		e.logger.WithField("action", actionLabels[choice]).Debug("prompt: action selected")

		switch choice {
		case ActionSave:
			return true, nil
		case ActionQuit:
			if !e.session.Dirty() {
				return false, nil
			}
			discard, err := e.driver.Confirm(ctx, ConfirmConfig{Message: "Discard unsaved changes?"})
			if err != nil {
				return false, err
			}
			if discard {
				return false, nil
			}
			continue
		case ActionLint:
			if err := e.lint(ctx); err != nil {
				return false, err
			}
			continue
		}

		changed, err := e.dispatch(ctx, choice)
		if err != nil {
			return false, err
		}
		if changed {
			if err := e.show(ctx); err != nil {
				return false, err
			}
		}
	}
}

// dispatch runs one editing action. Edits rejected by the session are
// reported to the user and do not end the loop.
func (e *Editor) dispatch(ctx context.Context, choice int) (bool, error) {
	switch choice {
	case ActionAddRoot:
		e.session.AddRootField()
		return true, nil
	case ActionUndo:
		return e.session.Undo(), nil
	case ActionRedo:
		return e.session.Redo(), nil
	}

	path, ok, err := e.pickField(ctx, "Field")
	if err != nil || !ok {
		return false, err
	}

	switch choice {
	case ActionAddChild:
		err = e.addChild(ctx, path)
	case ActionEdit:
		err = e.edit(ctx, path)
	case ActionRemove:
		err = reject(e.session.RemoveFieldAtPath(path))
	case ActionMove:
		err = e.move(ctx, path)
	case ActionDuplicate:
		err = reject(e.session.DuplicateFieldAtPath(path))
	}

	var rejected rejection
	if errors.As(err, &rejected) {
		return false, e.driver.Info(ctx, "Edit rejected: "+rejected.err.Error())
	}
	return err == nil, err
}

// rejection marks an error returned by the session, as opposed to a driver
// failure that must end the loop.
type rejection struct{ err error }

func (r rejection) Error() string { return r.err.Error() }
func (r rejection) Unwrap() error { return r.err }

func reject(err error) error {
	if err == nil {
		return nil
	}
	return rejection{err: err}
}

func (e *Editor) show(ctx context.Context) error {
	fields := e.session.Fields()
	if len(fields) == 0 {
		return e.driver.Info(ctx, emptyTreeMessage)
	}
	out, err := e.renderer.Render(ctx, fields, render.RenderOptions{Title: e.title})
	if err != nil {
		return err
	}
	return e.driver.Info(ctx, strings.TrimRight(string(out), "\n"))
}

func (e *Editor) lint(ctx context.Context) error {
	issues := e.session.Lint()
	if len(issues) == 0 {
		return e.driver.Info(ctx, "No issues found.")
	}
	lines := make([]string, len(issues))
	for i, issue := range issues {
		lines[i] = issue.String()
	}
	return e.driver.Info(ctx, strings.Join(lines, "\n"))
}

// pickField asks the user to choose a field. ok is false when the tree is
// empty.
func (e *Editor) pickField(ctx context.Context, message string) (model.Path, bool, error) {
	var (
		paths  []model.Path
		labels []string
	)
	_ = model.Walk(e.session.Fields(), func(path model.Path, field model.Field) error {
		name := field.Name
		if name == "" {
			name = "(unnamed)"
		}
		paths = append(paths, path)
		labels = append(labels, fmt.Sprintf("%s%s %s (%s)", strings.Repeat("  ", path.Depth()), path, name, field.Type))
		return nil
	})
	if len(paths) == 0 {
		return nil, false, e.driver.Info(ctx, emptyTreeMessage)
	}

	idx, err := e.driver.Select(ctx, SelectConfig{Message: message, Options: labels, PageSize: 15})
	if err != nil {
		return nil, false, err
	}
	if idx < 0 || idx >= len(paths) {
		return nil, false, fmt.Errorf("prompt: unknown field %d", idx)
	}
	return paths[idx], true, nil
}

func (e *Editor) addChild(ctx context.Context, path model.Path) error {
	parent, err := e.session.Resolve(path)
	if err != nil {
		return reject(err)
	}
	if parent.IsComplexType || parent.Type.Composite() {
		return reject(e.session.AddChildField(path))
	}
	promote, err := e.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Mark %q as a complex type?", parent.Name),
		Default: true,
	})
	if err != nil {
		return err
	}
	if promote {
		return reject(e.session.AddChildFieldPromoting(path))
	}
	return reject(e.session.AddChildField(path))
}

// edit prompts for every attribute and submits only the ones that changed.
func (e *Editor) edit(ctx context.Context, path model.Path) error {
	current, err := e.session.Resolve(path)
	if err != nil {
		return reject(err)
	}
	var update model.FieldUpdate

	name, err := e.driver.Input(ctx, InputConfig{Message: "Name", Default: current.Name})
	if err != nil {
		return err
	}
	if name = strings.TrimSpace(name); name != current.Name {
		update = update.SetName(name)
	}

	types := make([]string, 0, 7)
	for _, t := range model.FieldTypes() {
		types = append(types, string(t))
	}
	if !current.Type.Known() {
		types = append(types, string(current.Type))
	}
	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:      "Type",
		Options:      types,
		DefaultIndex: indexOf(types, string(current.Type)),
	})
	if err != nil {
		return err
	}
	if idx >= 0 && idx < len(types) && model.FieldType(types[idx]) != current.Type {
		update = update.SetType(model.FieldType(types[idx]))
	}

	required, err := e.driver.Confirm(ctx, ConfirmConfig{Message: "Required?", Default: current.Required})
	if err != nil {
		return err
	}
	if required != current.Required {
		update = update.SetRequired(required)
	}

	description, err := e.driver.TextArea(ctx, TextAreaConfig{Message: "Description", Default: current.Description})
	if err != nil {
		return err
	}
	if description = strings.TrimSpace(description); description != current.Description {
		update = update.SetDescription(description)
	}

	rawMin, err := e.driver.Input(ctx, InputConfig{
		Message:   "Min occurs",
		Default:   strconv.Itoa(current.MinOccurs),
		Validator: validateMinOccurs,
	})
	if err != nil {
		return err
	}
	if minOccurs, convErr := strconv.Atoi(strings.TrimSpace(rawMin)); convErr == nil && minOccurs != current.MinOccurs {
		update = update.SetMinOccurs(minOccurs)
	}

	rawMax, err := e.driver.Input(ctx, InputConfig{
		Message:   "Max occurs",
		Default:   current.MaxOccurs.String(),
		Help:      "A positive count or \"unbounded\". Values above 1 turn the field into an array.",
		Validator: validateMaxOccurs,
	})
	if err != nil {
		return err
	}
	if maxOccurs, parseErr := model.ParseOccurs(rawMax); parseErr == nil && maxOccurs != current.MaxOccurs {
		update = update.SetMaxOccurs(maxOccurs)
	}

	return reject(e.session.UpdateFieldAtPath(path, update))
}

func (e *Editor) move(ctx context.Context, path model.Path) error {
	raw, err := e.driver.Input(ctx, InputConfig{
		Message:   "New position among siblings",
		Default:   strconv.Itoa(path.Last()),
		Validator: validateMinOccurs,
	})
	if err != nil {
		return err
	}
	to, convErr := strconv.Atoi(strings.TrimSpace(raw))
	if convErr != nil {
		return reject(convErr)
	}
	return reject(e.session.MoveFieldAtPath(path, to))
}

func validateMinOccurs(raw string) error {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return fmt.Errorf("enter a non-negative integer")
	}
	return nil
}

func validateMaxOccurs(raw string) error {
	value, err := model.ParseOccurs(raw)
	if err != nil {
		return err
	}
	if !value.Valid() {
		return fmt.Errorf("maxOccurs must be at least 1 or unbounded")
	}
	return nil
}
