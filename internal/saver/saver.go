// Package saver is the save pipeline: it keeps the generated-code directory
// in sync with exactly what should exist there, regenerates every derived
// artifact, and drives the per-toolchain exporters. The whole pipeline is
// synchronous and runs once per save.
package saver

import (
	"errors"
	"os"

	"github.com/croft-build/croft/internal/catalog"
	"github.com/croft-build/croft/internal/export"
	"github.com/croft-build/croft/internal/manifest"
	"github.com/croft-build/croft/internal/msg"
	"github.com/croft-build/croft/internal/project"
	"github.com/croft-build/croft/internal/resources"
)

// GeneratedGroupName labels the manifest group exporters see
const GeneratedGroupName = "Croft Library Code"

// Saver runs one save of one project. Create a fresh Saver per save; Save
// panics if called twice on the same instance.
type Saver struct {
	proj         *project.Project
	projectFile  string
	generatedDir string
	cat          *catalog.Catalog

	generated *manifest.Node
	errors    []string

	hasConfigHeader bool
	hasBinaryData   bool
	saved           bool
}

// New prepares a save of p to projectFile (usually p.File(), but a
// save-as is just a different path)
func New(p *project.Project, projectFile string, cat *catalog.Catalog) *Saver {
	return &Saver{
		proj:         p,
		projectFile:  projectFile,
		generatedDir: p.GeneratedCodeDir(),
		cat:          cat,
		generated:    manifest.NewGroup(GeneratedGroupName),
	}
}

// Save runs the full pipeline. On any failure the project's file pointer is
// rolled back and the first recorded error is returned; nil means every
// stage succeeded.
func (s *Saver) Save() error {
	if s.saved || s.generated.NumChildren() != 0 {
		panic("saver: Save called more than once on the same Saver")
	}
	s.saved = true

	if _, err := os.Stat(s.generatedDir); err == nil {
		pruneDirectory(s.generatedDir)
	}

	oldFile := s.proj.File()
	s.proj.SetFile(s.projectFile)

	s.writeMainProjectFile()

	modules, err := s.cat.Resolve(s.proj)
	if err != nil {
		s.errors = append(s.errors, err.Error())
	}

	if len(s.errors) == 0 {
		s.writeAppConfigFile(modules)
	}
	if len(s.errors) == 0 {
		s.writeBinaryDataFiles()
	}
	if len(s.errors) == 0 {
		s.writeAppHeaderFile(modules)
	}
	if len(s.errors) == 0 {
		s.writeExporters(modules)
	}
	if len(s.errors) == 0 {
		// repeated in case the exporters changed any flags
		s.writeAppConfigFile(modules)
	}
	if len(s.errors) == 0 {
		if _, err := os.Stat(s.generatedDir); err == nil {
			s.writeReadmeFile()
		}
	}

	if len(s.errors) > 0 {
		s.proj.SetFile(oldFile)
	}

	return s.firstError()
}

// GeneratedGroup exposes the canonical manifest, mainly for tests and for
// callers that report what a save produced
func (s *Saver) GeneratedGroup() *manifest.Node { return s.generated }

func (s *Saver) writeMainProjectFile() {
	data, err := s.proj.Marshal()
	if err != nil {
		s.errors = append(s.errors, "can't serialize project: "+err.Error())
		return
	}
	s.replaceFileIfDifferent(s.projectFile, data)
}

func (s *Saver) writeAppConfigFile(modules []*catalog.Module) {
	content := GenerateAppConfig(s.proj, modules, s.proj.ExtraConfigContent())
	before := len(s.errors)
	s.SaveGeneratedFile(s.proj.ConfigHeaderName(), []byte(content))
	s.hasConfigHeader = len(s.errors) == before
}

func (s *Saver) writeBinaryDataFiles() {
	res, err := resources.Generate(s.proj)
	if err != nil {
		s.errors = append(s.errors, "can't create binary resources file: "+err.Error())
		return
	}
	if res.Count == 0 {
		return
	}

	before := len(s.errors)
	s.SaveGeneratedFile(resources.CppFilename, res.Cpp)
	s.SaveGeneratedFile(resources.HeaderFilename, res.Header)
	s.hasBinaryData = len(s.errors) == before
}

func (s *Saver) writeAppHeaderFile(modules []*catalog.Module) {
	content := GenerateAppHeader(s.proj, modules, s.hasConfigHeader, s.hasBinaryData)
	s.SaveGeneratedFile(s.proj.UmbrellaHeaderName(), []byte(content))
}

// writeExporters runs every requested toolchain target. Each exporter gets
// a fresh deep copy of the generated-files group, so none of them can
// corrupt what the next one sees; a failing exporter is recorded and the
// loop carries on, because toolchain targets are independent outputs.
func (s *Saver) writeExporters(modules []*catalog.Module) {
	for _, target := range s.proj.Exporters() {
		exporter, err := export.New(s.proj, target)
		if err != nil {
			s.errors = append(s.errors, err.Error())
			continue
		}

		msg.Info("writing files for: %s", exporter.Name())

		if err := os.MkdirAll(exporter.TargetDir(), 0755); err != nil {
			s.errors = append(s.errors, "can't create folder: "+exporter.TargetDir())
			continue
		}

		exporter.AddSearchPath(s.generatedDir)

		working := s.generated.Clone()
		exporter.SetGeneratedGroup(working)

		s.proj.Kind().PrepareExporter(exporter)
		for _, m := range modules {
			if err := m.PrepareExporter(exporter); err != nil {
				s.errors = append(s.errors, err.Error())
			}
		}

		working.SortRecursively()

		if err := exporter.Create(); err != nil {
			var saveErr *export.SaveError
			if errors.As(err, &saveErr) {
				s.errors = append(s.errors, saveErr.Message)
			} else {
				s.errors = append(s.errors, err.Error())
			}
		}
	}
}

func (s *Saver) writeReadmeFile() {
	content := `
 Important Note!!
 ================

The purpose of this folder is to contain files that are auto-generated by croft,
and ALL files in this folder will be mercilessly DELETED and completely re-written
whenever croft saves your project.

Therefore, it's a bad idea to make any manual changes to the files in here, or to
put any of your own files in here if you don't want to lose them. (Of course you may
choose to add the folder's contents to your version-control system so that you can
re-merge your own modifications after croft has saved its changes).
`
	s.SaveGeneratedFile("ReadMe.txt", []byte(content))
}
