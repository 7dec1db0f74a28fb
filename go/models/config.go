package models

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

type Config struct {
	Color        bool   `json:"color"`
	Verbose      bool   `json:"verbose"`
	StrictFormat bool   `json:"strict"`
	Transcript   string `json:"transcript"`
}

// Merge overlays settings read from r on top of c. Unknown keys are rejected
// so typos in settings.json don't silently fall back to defaults.
func (c *Config) Merge(r io.Reader) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return errors.Wrap(err, "failed to decode settings")
	}
	return nil
}
