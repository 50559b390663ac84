package prompt_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/integrixs/fieldtree/pkg/editor"
	"github.com/integrixs/fieldtree/pkg/model"
	"github.com/integrixs/fieldtree/pkg/prompt"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	selectErr    error
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ prompt.ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ prompt.SelectConfig) (int, error) {
	if s.selectErr != nil {
		return -1, s.selectErr
	}
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ prompt.TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) infoContains(fragment string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func newEditor(t *testing.T, session *editor.Session, driver prompt.Driver) *prompt.Editor {
	t.Helper()
	logger, _ := test.NewNullLogger()
	ed, err := prompt.NewEditor(session, driver, prompt.WithEditorLogger(logger), prompt.WithTitle("Order"))
	if err != nil {
		t.Fatalf("new editor: %v", err)
	}
	return ed
}

func TestEditor_BuildsTreeAndSaves(t *testing.T) {
	session := editor.New()
	driver := &stubDriver{
		selectIdx: []int{
			prompt.ActionAddRoot,
			prompt.ActionEdit, 0, 4,
			prompt.ActionAddChild, 0,
			prompt.ActionEdit, 1, 0,
			prompt.ActionSave,
		},
		inputs:    []string{"customer", "1", "1", "tags", "0", "unbounded"},
		confirm:   []bool{true, false},
		textAreas: []string{"A customer", ""},
	}

	saved, err := newEditor(t, session, driver).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !saved {
		t.Fatal("expected save")
	}

	want := []model.Field{{
		Name:        "customer",
		Type:        model.FieldTypeObject,
		Required:    true,
		Description: "A customer",
		MinOccurs:   1,
		MaxOccurs:   1,
		Children: []model.Field{
			{Name: "tags", Type: model.FieldTypeArray, MaxOccurs: model.Unbounded},
		},
	}}
	if diff := cmp.Diff(want, session.Fields(), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
	if !driver.infoContains("The tree has no fields yet.") {
		t.Fatalf("expected empty tree notice, got %q", driver.infoMessages)
	}
	if !driver.infoContains("Order\n0 customer: object [1..1] required") {
		t.Fatalf("expected rendered outline, got %q", driver.infoMessages)
	}
}

func TestEditor_PromotesAndReportsRejectedEdits(t *testing.T) {
	session := editor.New(editor.WithFields([]model.Field{
		{Name: "id", Type: model.FieldTypeString, MaxOccurs: 1},
	}))
	driver := &stubDriver{
		selectIdx: []int{
			prompt.ActionAddChild, 0,
			prompt.ActionMove, 1,
			prompt.ActionQuit,
		},
		inputs:  []string{"5"},
		confirm: []bool{true, true},
	}

	saved, err := newEditor(t, session, driver).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if saved {
		t.Fatal("expected quit without saving")
	}

	fields := session.Fields()
	if !fields[0].IsComplexType || len(fields[0].Children) != 1 {
		t.Fatalf("expected promoted parent with one child, got %+v", fields[0])
	}
	if !driver.infoContains("Edit rejected") {
		t.Fatalf("expected rejected move notice, got %q", driver.infoMessages)
	}
}

func TestEditor_QuitKeepsEditingWhenDiscardDeclined(t *testing.T) {
	session := editor.New()
	driver := &stubDriver{
		selectIdx: []int{prompt.ActionAddRoot, prompt.ActionQuit, prompt.ActionSave},
		confirm:   []bool{false},
	}

	saved, err := newEditor(t, session, driver).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !saved || len(session.Fields()) != 1 {
		t.Fatalf("expected saved tree with one field, saved=%v fields=%d", saved, len(session.Fields()))
	}
}

func TestEditor_QuitConfirmsWithoutHistory(t *testing.T) {
	session := editor.New(editor.WithHistoryLimit(0))
	driver := &stubDriver{
		selectIdx: []int{prompt.ActionAddRoot, prompt.ActionQuit},
		confirm:   []bool{true},
	}

	saved, err := newEditor(t, session, driver).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if saved {
		t.Fatal("expected quit without saving")
	}
	if driver.confirmPos != 1 {
		t.Fatalf("expected the discard confirmation, got %d confirms", driver.confirmPos)
	}
}

func TestEditor_QuitAfterUndoingEverythingSkipsConfirm(t *testing.T) {
	session := editor.New()
	driver := &stubDriver{
		selectIdx: []int{prompt.ActionAddRoot, prompt.ActionUndo, prompt.ActionQuit},
	}

	saved, err := newEditor(t, session, driver).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if saved || driver.confirmPos != 0 {
		t.Fatalf("expected a clean quit, saved=%v confirms=%d", saved, driver.confirmPos)
	}
}

func TestEditor_LintAndUndo(t *testing.T) {
	session := editor.New(editor.WithFields([]model.Field{
		{Name: "", Type: model.FieldTypeString, MaxOccurs: 1},
	}))
	driver := &stubDriver{
		selectIdx: []int{
			prompt.ActionLint,
			prompt.ActionAddRoot,
			prompt.ActionUndo,
			prompt.ActionRedo,
			prompt.ActionUndo,
			prompt.ActionSave,
		},
	}

	if _, err := newEditor(t, session, driver).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := len(session.Fields()); got != 1 {
		t.Fatalf("expected undo to restore one field, got %d", got)
	}
	if !driver.infoContains(model.IssueEmptyName) {
		t.Fatalf("expected lint output, got %q", driver.infoMessages)
	}
}

func TestEditor_EmptyTreeSkipsFieldActions(t *testing.T) {
	session := editor.New()
	driver := &stubDriver{selectIdx: []int{prompt.ActionRemove, prompt.ActionSave}}

	saved, err := newEditor(t, session, driver).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !saved || len(session.Fields()) != 0 {
		t.Fatalf("unexpected result saved=%v fields=%d", saved, len(session.Fields()))
	}
}

func TestEditor_Aborted(t *testing.T) {
	driver := &stubDriver{selectErr: prompt.ErrAborted}

	_, err := newEditor(t, editor.New(), driver).Run(context.Background())
	if !errors.Is(err, prompt.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestNewEditor_Validation(t *testing.T) {
	if _, err := prompt.NewEditor(nil, &stubDriver{}); !errors.Is(err, prompt.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := prompt.NewEditor(editor.New(), nil); err == nil {
		t.Fatal("expected error for missing driver")
	}
}
