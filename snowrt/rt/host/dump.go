package host

import (
	"io"

	"github.com/gekko3d/snowfall/snowrt/rt/core"

	"gopkg.in/yaml.v3"
)

type snapshotDoc struct {
	Count   int           `yaml:"count"`
	Windows []core.Window `yaml:"windows"`
}

// WriteSnapshot dumps a window snapshot as YAML.
func WriteSnapshot(w io.Writer, windows []core.Window) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snapshotDoc{Count: len(windows), Windows: windows}); err != nil {
		return err
	}
	return enc.Close()
}
