// Package manifest reads the optional mathic.toml build configuration that
// sits next to a source file.
package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// FileName is the manifest looked up beside the compiled source.
const FileName = "mathic.toml"

// DefaultDumpDir is where debug dumps go when neither the manifest nor a flag
// picks a directory.
const DefaultDumpDir = ".mathic"

type Manifest struct {
	Path  string `toml:"-"`
	Build Build  `toml:"build"`
	Dump  Dump   `toml:"dump"`
}

type Build struct {
	BlockScopes bool `toml:"block_scopes"`
	Strict      bool `toml:"strict"`
	Jobs        int  `toml:"jobs"`
}

type Dump struct {
	Dir string `toml:"dir"`
}

// Default is the configuration used when no manifest exists.
func Default() *Manifest {
	return &Manifest{Build: Build{Jobs: 1}, Dump: Dump{Dir: DefaultDumpDir}}
}

// Find returns the manifest next to src, or Default when there is none.
func Find(src string) (*Manifest, error) {
	p := filepath.Join(filepath.Dir(src), FileName)
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrap(err, "stat manifest")
	}
	return Load(p)
}

func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}
	m, err := Parse(string(b))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	m.Path = path
	return m, nil
}

// Parse decodes manifest text over the defaults. Unknown sections are
// ignored so newer files still load; unknown keys inside [build] and [dump]
// are errors.
func Parse(text string) (*Manifest, error) {
	m := Default()
	md, err := toml.Decode(text, m)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, key := range md.Undecoded() {
		if len(key) < 2 {
			continue
		}
		switch key[0] {
		case "build", "dump":
			return nil, errors.Errorf("unknown %s key %q", key[0], strings.Join(key[1:], "."))
		}
	}
	if m.Build.Jobs < 1 {
		return nil, errors.Errorf("jobs: expected a positive integer, got %d", m.Build.Jobs)
	}
	if m.Dump.Dir == "" {
		return nil, errors.New("dir: must not be empty")
	}
	return m, nil
}
