package cmd

import (
	"bytes"
	"path/filepath"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"

	"github.com/stiefelloader/stiefel/go/models"
)

const settingsFile = "settings.json"

// LoadSettings overlays the first settings.json found in the local, user or
// system config folders onto config.
func LoadSettings(config *models.Config) error {
	dirs := configdir.New("stiefelloader", "stiefel")
	dirs.LocalPath, _ = filepath.Abs(".")
	folder := dirs.QueryFolderContainsFile(settingsFile)
	if folder == nil {
		log.Debug("no settings.json found")
		return nil
	}
	data, err := folder.ReadFile(settingsFile)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", settingsFile)
	}
	log.WithField("path", folder.Path).Debug("loaded settings")
	return config.Merge(bytes.NewReader(data))
}
