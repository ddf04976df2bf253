package material

import (
	"fmt"
	"io"
	"os"
)

// Write writes the auxiliary files for lib next to base and returns their
// paths.
func Write(base string, f Format, lib *Library, effect string) ([]string, error) {
	files := f.Files(base)
	if files == nil {
		return nil, fmt.Errorf("unsupported material format %s", f)
	}

	switch f {
	case Python:
		if err := writeFile(files[0], func(w io.Writer) error {
			return WritePythonMaterials(w, lib)
		}); err != nil {
			return nil, err
		}
		if err := writeFile(files[1], func(w io.Writer) error {
			return WritePythonScene(w, lib, effect)
		}); err != nil {
			return nil, err
		}
	default:
		doc := NewDocument(lib, effect)
		if err := writeFile(files[0], func(w io.Writer) error {
			return doc.Encode(w, f)
		}); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func writeFile(path string, fn func(w io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	if err := fn(file); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
