package project

// Kind is what the project builds into. It decides the defines and link
// shape every exporter gets during preparation.
type Kind int

const (
	KindGUIApp Kind = iota
	KindConsoleApp
	KindLibrary
)

const (
	KindNameGUIApp     = "gui-app"
	KindNameConsoleApp = "console-app"
	KindNameLibrary    = "library"
)

// ExporterPrep is the mutable surface a toolchain exporter exposes while the
// project kind and the modules contribute their preparation.
type ExporterPrep interface {
	AddDefine(name, value string)
	AddSearchPath(dir string)
	SetLibrary(lib bool)
	SetConsole(console bool)
}

func (p *Project) Kind() Kind {
	switch p.cfg.Project.Kind {
	case KindNameConsoleApp:
		return KindConsoleApp
	case KindNameLibrary:
		return KindLibrary
	default:
		return KindGUIApp
	}
}

func (k Kind) String() string {
	switch k {
	case KindConsoleApp:
		return KindNameConsoleApp
	case KindLibrary:
		return KindNameLibrary
	default:
		return KindNameGUIApp
	}
}

// PrepareExporter applies the kind's toolchain-independent setup to an
// exporter before it creates its project files.
func (k Kind) PrepareExporter(e ExporterPrep) {
	switch k {
	case KindGUIApp:
		e.AddDefine("CROFT_APPLICATION", "1")
	case KindConsoleApp:
		e.AddDefine("CROFT_APPLICATION", "1")
		e.AddDefine("CROFT_CONSOLE_APPLICATION", "1")
		e.SetConsole(true)
	case KindLibrary:
		e.SetLibrary(true)
	}
}
