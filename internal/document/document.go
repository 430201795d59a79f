// Package document reads YAML documents from files or stdin and writes them
// back.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jacoelho/yamlpath/internal/yamlnode"
)

// Stdin is the file name that selects standard input.
const Stdin = "-"

var ErrIO = errors.New("i/o error")

// Read loads the document in r.
func Read(r io.Reader) (*yamlnode.Document, []byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading input: %v", ErrIO, err)
	}
	doc, err := yamlnode.Load(data)
	if err != nil {
		return nil, data, err
	}
	return doc, data, nil
}

// LoadFile loads name, or stdin when name is Stdin. The raw bytes are
// returned for diffing.
func LoadFile(name string, stdin io.Reader) (*yamlnode.Document, []byte, error) {
	if name == Stdin {
		return Read(stdin)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()

	return Read(f)
}

// Render encodes doc.
func Render(doc *yamlnode.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := yamlnode.Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes doc to name through a temporary file in the same directory,
// so readers never observe a partial document. The original file mode is
// preserved.
func Save(name string, doc *yamlnode.Document) error {
	data, err := Render(doc)
	if err != nil {
		return err
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(name); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(name)
	tmp := filepath.Join(dir, "."+filepath.Base(name)+"."+uuid.NewString()+".tmp")

	if err := os.WriteFile(tmp, data, mode); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := os.Rename(tmp, name); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}
