package pngio

import (
	"bytes"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/spf13/afero"
)

// WriteFile encodes img and writes it to path on fs, returning the encoded
// size. The data goes to a temporary file in the same directory first and
// is renamed into place, so readers never see a partial PNG.
func WriteFile(fs afero.Fs, path string, img *Image) (int, error) {
	var buf bytes.Buffer
	if err := EncodeImage(&buf, img); err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return 0, errors.Wrapf(err, "failed to create %s", dir)
		}
	}

	tmp := filepath.Join(dir, "."+xid.New().String()+".tmp")
	if err := afero.WriteFile(fs, tmp, buf.Bytes(), 0o644); err != nil {
		return 0, errors.Wrapf(err, "failed to write %s", tmp)
	}

	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return 0, errors.Wrapf(err, "failed to rename %s to %s", tmp, path)
	}
	return buf.Len(), nil
}

// ReadFile reads and decodes the PNG at path on fs.
func ReadFile(fs afero.Fs, path string) (*Image, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return img, nil
}
