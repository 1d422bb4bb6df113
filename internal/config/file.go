package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// File is the on-disk configuration read by the command line tool.
//
//	style: compressed
//	protocol: auto
//	source_map: true
//	load_paths:
//	  - node_modules
//	  - styles/partials
type File struct {
	Style                   string            `yaml:"style"`
	Protocol                string            `yaml:"protocol"`
	SourceMap               bool              `yaml:"source_map"`
	SourceMapIncludeSources bool              `yaml:"source_map_include_sources"`
	Verbose                 bool              `yaml:"verbose"`
	QuietDeps               bool              `yaml:"quiet_deps"`
	LoadPaths               []string          `yaml:"load_paths"`
	CompilerPath            string            `yaml:"compiler_path"`
	CompilerArgs            []string          `yaml:"compiler_args"`
	Env                     map[string]string `yaml:"env"`
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	return ParseFile(data)
}

// ParseFile parses YAML configuration. Unknown keys are rejected so typos
// surface instead of being ignored.
func ParseFile(data []byte) (*File, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &f, nil
}

func (f *File) validate() error {
	if _, err := ParseOutputStyle(f.Style); err != nil {
		return err
	}

	if _, err := message.ParseProtocol(f.Protocol); err != nil {
		return err
	}

	return nil
}

// Apply copies the file's settings onto opts. A style or protocol set in
// the file replaces the one in opts. Other settings only add to opts: flags
// are switched on, lists are appended, and CompilerPath and env entries are
// filled only where opts has none. An invalid style or protocol leaves opts
// untouched.
func (f *File) Apply(opts *Options) error {
	style, protocol := opts.Style, opts.Protocol

	if f.Style != "" {
		parsed, err := ParseOutputStyle(f.Style)
		if err != nil {
			return fmt.Errorf("apply config: %w", err)
		}

		style = parsed
	}

	if f.Protocol != "" {
		parsed, err := message.ParseProtocol(f.Protocol)
		if err != nil {
			return fmt.Errorf("apply config: %w", err)
		}

		protocol = parsed
	}

	opts.Style, opts.Protocol = style, protocol

	opts.SourceMap = opts.SourceMap || f.SourceMap
	opts.SourceMapIncludeSources = opts.SourceMapIncludeSources || f.SourceMapIncludeSources
	opts.Verbose = opts.Verbose || f.Verbose
	opts.QuietDeps = opts.QuietDeps || f.QuietDeps
	opts.LoadPaths = append(opts.LoadPaths, f.LoadPaths...)

	if opts.CompilerPath == "" {
		opts.CompilerPath = f.CompilerPath
	}

	opts.CompilerArgs = append(opts.CompilerArgs, f.CompilerArgs...)

	if len(f.Env) > 0 && opts.Env == nil {
		opts.Env = make(map[string]string, len(f.Env))
	}

	for k, v := range f.Env {
		if _, ok := opts.Env[k]; !ok {
			opts.Env[k] = v
		}
	}

	return nil
}
