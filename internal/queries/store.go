package queries

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kyleking/sqlitegui/internal/errors"
)

const (
	fileExt  = ".yaml"
	dirPerm  = 0755
	filePerm = 0644
)

// Store keeps one YAML file per saved query in a directory
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory holding the definitions
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+fileExt)
}

// Save validates def and writes it, replacing any definition with the same name
func (s *Store) Save(def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(def); err != nil {
		return errors.Wrap(err, errors.ErrTypeInternal, "failed to encode saved query")
	}

	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.ErrTypeInternal, "failed to encode saved query")
	}

	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return errors.Wrapf(err, errors.ErrTypeFileSystem, "failed to create query directory %s", s.dir)
	}

	// Write to a temporary file first so a failed write never truncates an existing query.
	tmp, err := os.CreateTemp(s.dir, "."+def.Name+"-*"+fileExt)
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeFileSystem, "failed to write saved query")
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrTypeFileSystem, "failed to write saved query")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrTypeFileSystem, "failed to write saved query")
	}

	if err := os.Chmod(tmpName, filePerm); err != nil {
		return errors.Wrap(err, errors.ErrTypeFileSystem, "failed to write saved query")
	}

	if err := os.Rename(tmpName, s.path(def.Name)); err != nil {
		return errors.Wrap(err, errors.ErrTypeFileSystem, "failed to write saved query")
	}

	return nil
}

// Load reads the definition called name
func (s *Store) Load(name string) (*Definition, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrTypeNotFound, "saved query %s not found", name).
				WithSuggestion("Run 'sqlitegui queries list' to see saved queries")
		}

		return nil, errors.Wrapf(err, errors.ErrTypeFileSystem, "failed to read saved query %s", name)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeValidation, "saved query %s is not valid YAML", name)
	}

	if def.Name == "" {
		def.Name = name
	}

	if def.Name != name {
		return nil, errors.Newf(errors.ErrTypeValidation, "saved query file %s names query %s", name, def.Name)
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	return &def, nil
}

// List returns the names of every saved query in alphabetical order. A missing
// directory holds no queries.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}

		return nil, errors.Wrapf(err, errors.ErrTypeFileSystem, "failed to read query directory %s", s.dir)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if !entry.Type().IsRegular() && entry.Type()&fs.ModeSymlink == 0 {
			continue
		}

		name, ok := strings.CutSuffix(entry.Name(), fileExt)
		if !ok || ValidateName(name) != nil {
			continue
		}

		names = append(names, name)
	}

	sort.Strings(names)

	return names, nil
}

// Delete removes the definition called name
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrTypeNotFound, "saved query %s not found", name)
		}

		return errors.Wrapf(err, errors.ErrTypeFileSystem, "failed to delete saved query %s", name)
	}

	return nil
}
