package easjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// EnsureMinimal writes the default document for profileName to the project's
// eas.json unless a file already exists there. An existing file is never read,
// validated, merged or overwritten. It reports whether a file was written.
func EnsureMinimal(projectDir, profileName string, workflow Workflow) (bool, error) {
	path := Path(projectDir)

	if _, err := os.Lstat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}

	data, err := Marshal(DefaultDocument(profileName, workflow))
	if err != nil {
		return false, err
	}

	// O_EXCL keeps a file created between the check and the write intact.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("closing %s: %w", path, err)
	}
	return true, nil
}

// Marshal renders a document as two-space indented JSON with sorted keys and a
// trailing newline.
func Marshal(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", FileName, err)
	}
	return append(data, '\n'), nil
}
