package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/integrixs/fieldtree/pkg/codec"
	"github.com/integrixs/fieldtree/pkg/model"
)

// readTree loads a native tree file.
func readTree(path string) (codec.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return codec.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := codec.Decode(raw)
	if err != nil {
		return codec.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	if doc.ID == "" {
		doc.ID = treeID(path)
	}
	return doc, nil
}

// readOrCreateTree is readTree, except that a missing file yields an empty
// document named after the file.
func readOrCreateTree(path string) (codec.Document, error) {
	doc, err := readTree(path)
	if errors.Is(err, os.ErrNotExist) {
		return codec.Document{ID: treeID(path), Fields: []model.Field{}}, nil
	}
	return doc, err
}

// writeTree encodes doc by file extension and replaces path through a rename
// so a failed write never truncates the previous tree.
func writeTree(path string, doc codec.Document) error {
	out, err := codec.Encode(doc, codec.EncodingForPath(path))
	if err != nil {
		return err
	}
	return writeFile(path, out)
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func treeID(path string) string {
	base := filepath.Base(path)
	if idx := strings.Index(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}
