package configuration

import (
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"
	"github.com/valyala/fasttemplate"

	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// Tokens is the read-only substitution map handed to file writers. It is
// built once per Configure call.
type Tokens struct {
	values map[string]interface{}
}

// NewTokens snapshots values into a Tokens map.
func NewTokens(values map[string]string) Tokens {
	m := make(map[string]interface{}, len(values))
	for k, v := range values {
		m[k] = v
	}
	return Tokens{values: m}
}

// Get returns the value of token name.
func (t Tokens) Get(name string) (string, bool) {
	v, ok := t.values[name]
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Replace substitutes @name@ tokens in s. Unknown tokens are left as is.
func (t Tokens) Replace(s string) string {
	return fasttemplate.ExecuteStringStd(s, "@", "@", t.values)
}

// copyFiles copies every registered FileConfig into the home.
func (c *Configuration) copyFiles(tokens Tokens) error {
	files := c.Files()
	if len(files) == 0 {
		return nil
	}
	if c.home == "" {
		return errUtils.Usagef("file configurations need a local configuration home")
	}

	for _, f := range files {
		if err := copyFile(c.home, f, tokens); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(home string, f models.FileConfig, tokens Tokens) error {
	info, err := os.Stat(f.File)
	if err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "configuration file [%s] cannot be read", f.File)
	}

	destDir := filepath.Join(home, f.ToDir)

	if info.IsDir() {
		opts := cp.Options{
			Skip: func(src os.FileInfo, _, dest string) (bool, error) {
				if f.Overwrite || src.IsDir() {
					return false, nil
				}
				_, err := os.Stat(dest)
				return err == nil, nil
			},
		}
		if err := cp.Copy(f.File, destDir, opts); err != nil {
			return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to copy [%s] to [%s]", f.File, destDir)
		}
		return nil
	}

	name := f.ToFile
	if name == "" {
		name = filepath.Base(f.File)
	}
	dest := filepath.Join(destDir, name)
	if _, err := os.Stat(dest); err == nil && !f.Overwrite {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to create [%s]", filepath.Dir(dest))
	}

	if !f.ConfigFile {
		if err := cp.Copy(f.File, dest); err != nil {
			return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to copy [%s] to [%s]", f.File, dest)
		}
		return nil
	}

	content, err := os.ReadFile(f.File)
	if err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to read [%s]", f.File)
	}
	if err := os.WriteFile(dest, []byte(tokens.Replace(string(content))), info.Mode().Perm()); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to write [%s]", dest)
	}
	return nil
}
