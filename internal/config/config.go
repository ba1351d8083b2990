// Package config loads the optional .cmut.yaml file that seeds default
// flag values for a run; any flag given on the command line always
// wins over a value loaded here.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cmut-dev/cmut/internal/cerrors"
)

// File mirrors .cmut.yaml's shape. Field names match the run command's
// long flag names with the leading "--" stripped and the dashed words
// written in camelCase (--mutation-info-file becomes mutationInfoFile),
// so a user scanning both side by side recognises them immediately.
type File struct {
	MutationInfoFile     string   `yaml:"mutationInfoFile"`
	EnabledMutationsFile string   `yaml:"enabledMutationsFile"`
	Compiler             string   `yaml:"compiler"`
	Workers              int      `yaml:"workers"`
	NoMutationOpts       bool     `yaml:"noMutationOpts"`
	CompilerFlags        []string `yaml:"compilerFlags"`
}

// Load reads .cmut.yaml from dir (typically the working directory, or
// the directory containing the build database), returning a zero File
// and no error when the file is simply absent — an absent config file
// is not an error, it just means every flag falls back to its own
// built-in default.
func Load(dir string) (*File, error) {
	path := filepath.Join(dir, ".cmut.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, cerrors.Argument("reading %s: %v", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, cerrors.Argument("parsing %s: %v", path, err)
	}
	return &f, nil
}

// ApplyDefaults copies any field left at its zero value in the CLI's
// own flag set from f, leaving anything the user set explicitly alone.
// mutationInfoFile, enabledMutationsFile, compiler, and compilerFlags
// are treated as "unset" when empty; workers is treated as "unset"
// when zero, matching the driver's own runtime.NumCPU() fallback.
func (f *File) ApplyDefaults(mutationInfoFile, enabledMutationsFile, compiler *string, workers *int, compilerFlags *[]string) {
	if *mutationInfoFile == "" {
		*mutationInfoFile = f.MutationInfoFile
	}
	if *enabledMutationsFile == "" {
		*enabledMutationsFile = f.EnabledMutationsFile
	}
	if *compiler == "" {
		*compiler = f.Compiler
	}
	if *workers == 0 {
		*workers = f.Workers
	}
	if len(*compilerFlags) == 0 {
		*compilerFlags = f.CompilerFlags
	}
}
