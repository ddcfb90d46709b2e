package descriptor

import (
	_ "embed"
	"os"

	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/logging"
)

//go:embed embedded/default.prown.toml
var defaultTemplate string

// DefaultTemplate returns the descriptor written by Scaffold.
func DefaultTemplate() string {
	return defaultTemplate
}

// Scaffold writes the default descriptor to path. An existing file is left
// untouched and reported as ErrAlreadyExists.
func Scaffold(path string) error {
	logger := logging.GetLogger("descriptor")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return errors.Newf(errors.ErrAlreadyExists, "%s already exists", path).
				WithDetail("path", path)
		}
		return errors.Wrapf(err, errors.ErrIO, "cannot create %s", path).
			WithDetail("path", path)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(defaultTemplate); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "cannot write %s", path).
			WithDetail("path", path)
	}

	logger.Info().Str("path", path).Msg("Created descriptor")
	return nil
}
