package project

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// Filename is the canonical project file name
	Filename = "Croft.toml"

	// GeneratedDirName is the directory owned entirely by the saver; anything
	// in it that isn't on the keep-list is disposable
	GeneratedDirName = "CroftLibraryCode"

	defaultConfigHeader   = "AppConfig.h"
	defaultUmbrellaHeader = "CroftHeader.h"
)

// FlagState is the resolved value of a module config flag
type FlagState int

const (
	FlagDefault FlagState = iota // commented out in the generated header
	FlagEnabled
	FlagDisabled
)

const (
	flagEnabledValue  = "enabled"
	flagDisabledValue = "disabled"
)

// ProjectSection defines the [project] section of Croft.toml
type ProjectSection struct {
	Name           string `toml:"name"`
	Version        string `toml:"version"`
	UID            string `toml:"uid"`
	Kind           string `toml:"kind"`
	ConfigHeader   string `toml:"config-header,omitempty"`
	UmbrellaHeader string `toml:"umbrella-header,omitempty"`
	ExtraConfig    string `toml:"extra-config,omitempty"`
}

// Config is the on-disk shape of Croft.toml. The plain-key fields come
// first so Marshal emits them at the document root, before any table
// header; a key written after [project] would belong to that table.
type Config struct {
	Modules       []string          `toml:"modules"`
	Exporters     []string          `toml:"exporters"`
	Resources     []string          `toml:"resources,omitempty"`
	Project       ProjectSection    `toml:"project"`
	ModuleSources map[string]string `toml:"module-sources,omitempty"`
	Flags         map[string]string `toml:"flags,omitempty"`
}

// Project is a loaded Croft.toml plus its current on-disk location. The
// saver is the only writer of the location pointer; everything else only
// reads the description.
type Project struct {
	cfg  Config
	file string
	env  ConfigEnv
}

var errNoUID = errors.New("project has no uid (run `croft init` to generate one)")

func Parse(rdr io.Reader, env ConfigEnv) (*Config, error) {
	var rawConfig map[string]any
	dec := toml.NewDecoder(rdr)
	if err := dec.Decode(&rawConfig); err != nil {
		if derr, ok := err.(*toml.DecodeError); ok {
			return nil, errors.New(derr.String())
		}
		return nil, err
	}

	processedConfig, err := ProcessExpressions(rawConfig, env)
	if err != nil {
		return nil, fmt.Errorf("error processing expressions in project file: %w", err)
	}
	rawConfig = processedConfig.(map[string]any)

	cfg := new(Config)

	for key := range rawConfig {
		switch key {
		case "project", "modules", "module-sources", "flags", "exporters", "resources":
		default:
			return nil, fmt.Errorf("unknown key %q in project file", key)
		}
	}

	if err := unmarshalSection(rawConfig, "project", &cfg.Project); err != nil {
		return nil, err
	}
	if err := unmarshalSection(rawConfig, "modules", &cfg.Modules); err != nil {
		return nil, err
	}
	if err := unmarshalSection(rawConfig, "module-sources", &cfg.ModuleSources); err != nil {
		return nil, err
	}
	if err := unmarshalConditionalMap(rawConfig, "flags", &cfg.Flags, env); err != nil {
		return nil, err
	}
	if err := unmarshalSection(rawConfig, "exporters", &cfg.Exporters); err != nil {
		return nil, err
	}
	if err := unmarshalSection(rawConfig, "resources", &cfg.Resources); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load parses a project file from its path
func Load(path string) (*Project, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	env := NewConfigEnv(filepath.Dir(path))
	cfg, err := Parse(bufio.NewReader(f), env)
	if err != nil {
		return nil, err
	}
	if cfg.Project.UID == "" {
		return nil, errNoUID
	}

	return &Project{cfg: *cfg, file: path, env: env}, nil
}

func (p *Project) Name() string    { return p.cfg.Project.Name }
func (p *Project) Version() string { return p.cfg.Project.Version }
func (p *Project) UID() string     { return p.cfg.Project.UID }
func (p *Project) Env() ConfigEnv  { return p.env }

// File is the project's current on-disk location
func (p *Project) File() string { return p.file }

// SetFile repoints the project at a new on-disk location. Only the saver
// calls this, and it rolls the pointer back if the save fails.
func (p *Project) SetFile(path string) { p.file = path }

// Dir is the directory containing the project file
func (p *Project) Dir() string { return filepath.Dir(p.file) }

// GeneratedCodeDir is the directory all generated source artifacts go into
func (p *Project) GeneratedCodeDir() string {
	return filepath.Join(p.Dir(), GeneratedDirName)
}

func (p *Project) ConfigHeaderName() string {
	if p.cfg.Project.ConfigHeader != "" {
		return p.cfg.Project.ConfigHeader
	}
	return defaultConfigHeader
}

func (p *Project) UmbrellaHeaderName() string {
	if p.cfg.Project.UmbrellaHeader != "" {
		return p.cfg.Project.UmbrellaHeader
	}
	return defaultUmbrellaHeader
}

// ExtraConfigContent is caller-supplied raw text appended to the generated
// config header, typically pulled in with {{ ReadFile("...") }}
func (p *Project) ExtraConfigContent() string { return p.cfg.Project.ExtraConfig }

// Modules returns the required module ids in declaration order
func (p *Project) Modules() []string { return p.cfg.Modules }

// ModuleSource returns the fetch URL for a module id, if the project pins one
func (p *Project) ModuleSource(id string) (string, bool) {
	src, ok := p.cfg.ModuleSources[id]
	return src, ok
}

// Exporters returns the requested toolchain targets in declaration order
func (p *Project) Exporters() []string { return p.cfg.Exporters }

// Resources returns the binary-resource glob patterns
func (p *Project) Resources() []string { return p.cfg.Resources }

// FlagState resolves a module config flag against the project's overrides
func (p *Project) FlagState(symbol string) FlagState {
	switch p.cfg.Flags[symbol] {
	case flagEnabledValue:
		return FlagEnabled
	case flagDisabledValue:
		return FlagDisabled
	default:
		return FlagDefault
	}
}

// SetFlagState overrides a flag. Exporter preparation may do this as a side
// effect, which is why the config header is rewritten after the exporters run.
func (p *Project) SetFlagState(symbol string, state FlagState) {
	if p.cfg.Flags == nil {
		p.cfg.Flags = make(map[string]string)
	}
	switch state {
	case FlagEnabled:
		p.cfg.Flags[symbol] = flagEnabledValue
	case FlagDisabled:
		p.cfg.Flags[symbol] = flagDisabledValue
	default:
		delete(p.cfg.Flags, symbol)
	}
}

// Marshal serializes the canonical project description
func (p *Project) Marshal() ([]byte, error) {
	return toml.Marshal(p.cfg)
}

// VersionAsHex encodes "major.minor.point[.sub]" the way the generated
// ProjectInfo block and some exporters expect it: 0xMMmmpp (one extra byte
// for a fourth segment)
func (p *Project) VersionAsHex() string {
	segments := strings.Split(p.cfg.Project.Version, ".")

	value := 0
	for i, seg := range segments {
		if i >= 4 {
			break
		}
		n, err := strconv.Atoi(strings.TrimSpace(seg))
		if err != nil {
			n = 0
		}
		value = (value << 8) + n
	}
	// pad two-segment versions up to three bytes
	for i := len(segments); i < 3; i++ {
		value <<= 8
	}

	return "0x" + strconv.FormatInt(int64(value), 16)
}

func mustMarshal(v any) string {
	b, err := toml.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// unmarshalSection is a helper to parse sections without conditional logic.
// Re-nesting the value under a fixed key lets top-level arrays round-trip
// through toml.Unmarshal too. Decoding is strict: a key the section's type
// doesn't declare (say, `modules` accidentally placed under [project]) is
// an error rather than silently dropped.
func unmarshalSection[T any](rawCfg map[string]any, name string, dst *T) error {
	data, ok := rawCfg[name]
	if !ok {
		return nil
	}

	var holder struct {
		V T `toml:"v"`
	}
	dec := toml.NewDecoder(strings.NewReader(mustMarshal(map[string]any{"v": data})))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&holder); err != nil {
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			return fmt.Errorf("unexpected key in [%s] section:\n%s", name, serr.String())
		}
		return fmt.Errorf("failed to parse [%s] section: %w", name, err)
	}
	*dst = holder.V
	return nil
}

// unmarshalConditionalMap parses a string map section whose sub-tables keyed
// by boolean expressions are merged in when the condition holds, e.g.
//
//	[flags]
//	CROFT_ASSERTIONS = "enabled"
//	[flags.'target_os == "windows"']
//	CROFT_WASAPI = "enabled"
func unmarshalConditionalMap(rawCfg map[string]any, name string, dst *map[string]string, env ConfigEnv) error {
	sectionData, ok := rawCfg[name]
	if !ok {
		return nil
	}

	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		return fmt.Errorf("invalid [%s] section format: expected a table", name)
	}

	if *dst == nil {
		*dst = make(map[string]string)
	}

	for key, val := range sectionMap {
		subMap, isTable := val.(map[string]any)
		if !isTable {
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("invalid value for [%s] key %q: expected a string", name, key)
			}
			(*dst)[key] = s
			continue
		}

		matched, isCondition, err := EvalCondition(key, env)
		if err != nil {
			return fmt.Errorf("in [%s.%q]: %w", name, key, err)
		}
		if !isCondition {
			return fmt.Errorf("invalid sub-table key [%s.%q]: not a condition", name, key)
		}
		if !matched {
			continue
		}

		for subKey, subVal := range subMap {
			s, ok := subVal.(string)
			if !ok {
				return fmt.Errorf("invalid value for [%s.%q] key %q: expected a string", name, key, subKey)
			}
			(*dst)[subKey] = s
		}
	}

	return nil
}
