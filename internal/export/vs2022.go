package export

import (
	"encoding/xml"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/croft-build/croft/internal/project"
)

//
// structures for .vcxproj
//

type VSProject struct {
	XMLName              xml.Name                `xml:"Project"`
	DefaultTargets       string                  `xml:"DefaultTargets,attr"`
	ToolsVersion         string                  `xml:"ToolsVersion,attr"`
	XMLNS                string                  `xml:"xmlns,attr"`
	PropertyGroups       []VSPropertyGroup       `xml:"PropertyGroup"`
	ItemGroups           []VSItemGroup           `xml:"ItemGroup"`
	ImportGroups         []VSImportGroup         `xml:"ImportGroup"`
	ItemDefinitionGroups []VSItemDefinitionGroup `xml:"ItemDefinitionGroup"`
	Imports              []VSImport              `xml:"Import"`
}

type VSItemGroup struct {
	Label                 string                   `xml:"Label,attr,omitempty"`
	ProjectConfigurations []VSProjectConfiguration `xml:"ProjectConfiguration,omitempty"`
	ClCompiles            []VSClCompile            `xml:"ClCompile,omitempty"`
	ClIncludes            []VSClInclude            `xml:"ClInclude,omitempty"`
}

type VSProjectConfiguration struct {
	Include       string `xml:"Include,attr"`
	Configuration string `xml:"Configuration"`
	Platform      string `xml:"Platform"`
}

type VSClCompile struct {
	Include string `xml:"Include,attr"`
}

type VSClInclude struct {
	Include string `xml:"Include,attr"`
}

type VSPropertyGroup struct {
	Label                        string `xml:"Label,attr,omitempty"`
	Condition                    string `xml:"Condition,attr,omitempty"`
	PreferredToolArchitecture    string `xml:"PreferredToolArchitecture,omitempty"`
	ProjectGuid                  string `xml:"ProjectGuid,omitempty"`
	Keyword                      string `xml:"Keyword,omitempty"`
	WindowsTargetPlatformVersion string `xml:"WindowsTargetPlatformVersion,omitempty"`
	ProjectName                  string `xml:"ProjectName,omitempty"`
	ConfigurationType            string `xml:"ConfigurationType,omitempty"`
	PlatformToolset              string `xml:"PlatformToolset,omitempty"`
	CharacterSet                 string `xml:"CharacterSet,omitempty"`
	OutDir                       string `xml:"OutDir,omitempty"`
	IntDir                       string `xml:"IntDir,omitempty"`
	TargetName                   string `xml:"TargetName,omitempty"`
	TargetExt                    string `xml:"TargetExt,omitempty"`
	LinkIncremental              *bool  `xml:"LinkIncremental,omitempty"`
	GenerateManifest             bool   `xml:"GenerateManifest,omitempty"`
	UseDebugLibraries            *bool  `xml:"UseDebugLibraries,omitempty"`
	WholeProgramOptimization     *bool  `xml:"WholeProgramOptimization,omitempty"`
}

type VSImportGroup struct {
	Label   string     `xml:"Label,attr,omitempty"`
	Imports []VSImport `xml:"Import"`
}

type VSImport struct {
	Project   string `xml:"Project,attr"`
	Condition string `xml:"Condition,attr,omitempty"`
	Label     string `xml:"Label,attr,omitempty"`
}

type VSItemDefinitionGroup struct {
	Condition string          `xml:"Condition,attr"`
	ClCompile VSCppCompileDef `xml:"ClCompile"`
	Link      VSLinkDef       `xml:"Link"`
}

type VSCppCompileDef struct {
	WarningLevel                 string `xml:"WarningLevel"`
	SDLCheck                     bool   `xml:"SDLCheck"`
	AdditionalIncludeDirectories string `xml:"AdditionalIncludeDirectories"`
	PreprocessorDefinitions      string `xml:"PreprocessorDefinitions"`
	ConformanceMode              bool   `xml:"ConformanceMode"`
	Optimization                 string `xml:"Optimization,omitempty"`
	BasicRuntimeChecks           string `xml:"BasicRuntimeChecks,omitempty"`
	DebugInformationFormat       string `xml:"DebugInformationFormat,omitempty"`
	RuntimeLibrary               string `xml:"RuntimeLibrary,omitempty"`
	FunctionLevelLinking         *bool  `xml:"FunctionLevelLinking,omitempty"`
	IntrinsicFunctions           *bool  `xml:"IntrinsicFunctions,omitempty"`
}

type VSLinkDef struct {
	SubSystem                string `xml:"SubSystem"`
	GenerateDebugInformation *bool  `xml:"GenerateDebugInformation,omitempty"`
	AdditionalDependencies   string `xml:"AdditionalDependencies"`
	ProgramDataBaseFile      string `xml:"ProgramDataBaseFile,omitempty"`
	AdditionalOptions        string `xml:"AdditionalOptions,omitempty"`
	EnableCOMDATFolding      *bool  `xml:"EnableCOMDATFolding,omitempty"`
	OptimizeReferences       *bool  `xml:"OptimizeReferences,omitempty"`
}

//
// exporter
//

type vs2022Exporter struct {
	base
}

func newVS2022(p *project.Project) *vs2022Exporter {
	return &vs2022Exporter{base: newBase(p, "Visual Studio 2022", "VisualStudio2022")}
}

// guidFor derives a stable GUID from the project uid, so saving twice
// produces byte-identical project files
func (g *vs2022Exporter) guidFor(purpose string) string {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(g.proj.UID()+"/"+purpose))
	return strings.ToUpper(id.String())
}

func (g *vs2022Exporter) Create() error {
	name := g.proj.Name()
	projectGuid := g.guidFor("vcxproj")

	if err := g.writeProjectFile(name, projectGuid); err != nil {
		return err
	}
	return g.writeSolutionFile(name, projectGuid)
}

func (g *vs2022Exporter) writeSolutionFile(name, projectGuid string) error {
	var sb strings.Builder

	writeln(&sb, "Microsoft Visual Studio Solution File, Format Version 12.00")
	writeln(&sb, "# Visual Studio Version 17")
	// Windows (Visual C++) https://github.com/VISTALL/visual-studio-project-type-guids
	writeln(&sb,
		`Project("{8BC9CEB8-8B4A-11D0-8D11-00A0C91BC942}") = "`, name, `", "`, name, `.vcxproj", "{`, projectGuid, `}"`,
	)
	writeln(&sb, "EndProject")
	writeln(&sb, "Global")
	writeln(&sb, "\tGlobalSection(SolutionConfigurationPlatforms) = preSolution")
	writeln(&sb, "\t\tDebug|x64 = Debug|x64")
	writeln(&sb, "\t\tRelease|x64 = Release|x64")
	writeln(&sb, "\tEndGlobalSection")
	writeln(&sb, "\tGlobalSection(ProjectConfigurationPlatforms) = postSolution")
	writeln(&sb, "\t\t{", projectGuid, "}.Debug|x64.ActiveCfg = Debug|x64")
	writeln(&sb, "\t\t{", projectGuid, "}.Debug|x64.Build.0 = Debug|x64")
	writeln(&sb, "\t\t{", projectGuid, "}.Release|x64.ActiveCfg = Release|x64")
	writeln(&sb, "\t\t{", projectGuid, "}.Release|x64.Build.0 = Release|x64")
	writeln(&sb, "\tEndGlobalSection")
	writeln(&sb, "\tGlobalSection(SolutionProperties) = preSolution")
	writeln(&sb, "\t\tHideSolutionNode = FALSE")
	writeln(&sb, "\tEndGlobalSection")
	writeln(&sb, "\tGlobalSection(ExtensibilityGlobals) = postSolution")
	writeln(&sb, "\t\tSolutionGuid = {", g.guidFor("sln"), "}")
	writeln(&sb, "\tEndGlobalSection")
	writeln(&sb, "EndGlobal")

	return g.writeTargetFile(name+".sln", []byte(sb.String()))
}

func (g *vs2022Exporter) writeProjectFile(name, projectGuid string) error {
	var clCompiles []VSClCompile
	for _, src := range g.sources() {
		clCompiles = append(clCompiles, VSClCompile{Include: g.relPath(src)})
	}

	var clIncludes []VSClInclude
	if g.group != nil {
		for _, f := range g.group.Files() {
			if !isCompileUnit(f) {
				clIncludes = append(clIncludes, VSClInclude{Include: g.relPath(f)})
			}
		}
	}

	allPropertyGroups := []VSPropertyGroup{
		{PreferredToolArchitecture: "x64"},
		{
			Label:                        "Globals",
			ProjectGuid:                  "{" + projectGuid + "}",
			Keyword:                      "Win32Proj",
			WindowsTargetPlatformVersion: "10.0",
			ProjectName:                  name,
		},
	}
	allPropertyGroups = append(allPropertyGroups, g.createConfigurationPropertyGroups(name)...)

	allItemGroups := []VSItemGroup{
		{
			Label: "ProjectConfigurations",
			ProjectConfigurations: []VSProjectConfiguration{
				{Include: "Debug|x64", Configuration: "Debug", Platform: "x64"},
				{Include: "Release|x64", Configuration: "Release", Platform: "x64"},
			},
		},
		{ClCompiles: clCompiles},
		{ClIncludes: clIncludes},
	}

	allImports := []VSImport{
		{Project: `$(VCTargetsPath)\Microsoft.Cpp.Default.props`},
		{Project: `$(VCTargetsPath)\Microsoft.Cpp.props`},
		{Project: `$(UserRootDir)\Microsoft.Cpp.$(Platform).user.props`, Condition: `exists('$(UserRootDir)\Microsoft.Cpp.$(Platform).user.props')`, Label: "LocalAppDataPlatform"},
		{Project: `$(VCTargetsPath)\Microsoft.Cpp.targets`},
	}

	vsproj := VSProject{
		DefaultTargets:       "Build",
		ToolsVersion:         "17.0",
		XMLNS:                "http://schemas.microsoft.com/developer/msbuild/2003",
		PropertyGroups:       allPropertyGroups,
		ItemGroups:           allItemGroups,
		ItemDefinitionGroups: g.createItemDefinitionGroups(),
		Imports:              allImports,
		ImportGroups:         []VSImportGroup{{Label: "ExtensionTargets"}},
	}

	output, err := xml.MarshalIndent(vsproj, "", "  ")
	if err != nil {
		return saveErrorf("can't serialize project file for %s: %v", name, err)
	}
	return g.writeTargetFile(name+".vcxproj", []byte(xml.Header+string(output)))
}

func (g *vs2022Exporter) relPath(path string) string {
	rel, err := filepath.Rel(g.targetDir, path)
	if err != nil {
		return path
	}
	return filepath.FromSlash(rel)
}

func (g *vs2022Exporter) configurationType() string {
	if g.library {
		return "StaticLibrary"
	}
	return "Application"
}

func (g *vs2022Exporter) targetExt() string {
	if g.library {
		return ".lib"
	}
	return ".exe"
}

func (g *vs2022Exporter) subSystem() string {
	if g.console {
		return "Console"
	}
	return "Windows"
}

func (g *vs2022Exporter) createConfigurationPropertyGroups(name string) []VSPropertyGroup {
	trueVal, falseVal := true, false

	return []VSPropertyGroup{
		{
			Condition:         "'$(Configuration)|$(Platform)'=='Debug|x64'",
			Label:             "Configuration",
			ConfigurationType: g.configurationType(),
			PlatformToolset:   "v143",
			CharacterSet:      "Unicode",
			UseDebugLibraries: &trueVal,
		},
		{
			Condition:                "'$(Configuration)|$(Platform)'=='Release|x64'",
			Label:                    "Configuration",
			ConfigurationType:        g.configurationType(),
			PlatformToolset:          "v143",
			CharacterSet:             "Unicode",
			UseDebugLibraries:        &falseVal,
			WholeProgramOptimization: &trueVal,
		},
		{
			Condition:        "'$(Configuration)|$(Platform)'=='Debug|x64'",
			OutDir:           `$(SolutionDir)Debug\`,
			IntDir:           `$(SolutionDir)int\Debug\`,
			TargetName:       name,
			TargetExt:        g.targetExt(),
			LinkIncremental:  &trueVal,
			GenerateManifest: true,
		},
		{
			Condition:        "'$(Configuration)|$(Platform)'=='Release|x64'",
			OutDir:           `$(SolutionDir)Release\`,
			IntDir:           `$(SolutionDir)int\Release\`,
			TargetName:       name,
			TargetExt:        g.targetExt(),
			LinkIncremental:  &falseVal,
			GenerateManifest: true,
		},
	}
}

func (g *vs2022Exporter) includeDirectories() string {
	dirs := make([]string, 0, len(g.searchPaths))
	for _, p := range g.searchPaths {
		dirs = append(dirs, g.relPath(p))
	}
	return strings.Join(dirs, ";") + ";%(AdditionalIncludeDirectories)"
}

func (g *vs2022Exporter) preprocessorDefinitions(isDebug bool) string {
	defines := []string{"WIN32", "_WINDOWS"}
	if isDebug {
		defines = append(defines, "_DEBUG")
	} else {
		defines = append(defines, "NDEBUG")
	}
	for _, d := range g.defines {
		if d.value != "" {
			defines = append(defines, d.name+"="+d.value)
		} else {
			defines = append(defines, d.name)
		}
	}
	return strings.Join(defines, ";") + ";%(PreprocessorDefinitions)"
}

func (g *vs2022Exporter) createItemDefinitionGroups() []VSItemDefinitionGroup {
	trueVal, falseVal := true, false
	return []VSItemDefinitionGroup{
		{
			Condition: "'$(Configuration)|$(Platform)'=='Debug|x64'",
			ClCompile: VSCppCompileDef{
				WarningLevel:                 "Level3",
				SDLCheck:                     true,
				AdditionalIncludeDirectories: g.includeDirectories(),
				PreprocessorDefinitions:      g.preprocessorDefinitions(true),
				ConformanceMode:              true,
				Optimization:                 "Disabled",
				BasicRuntimeChecks:           "EnableFastChecks",
				DebugInformationFormat:       "ProgramDatabase",
				RuntimeLibrary:               "MultiThreadedDebugDLL",
			},
			Link: VSLinkDef{
				SubSystem:                g.subSystem(),
				GenerateDebugInformation: &trueVal,
				AdditionalDependencies:   "%(AdditionalDependencies)",
				ProgramDataBaseFile:      `$(OutDir)$(TargetName).pdb`,
				AdditionalOptions:        "%(AdditionalOptions) /machine:x64",
			},
		},
		{
			Condition: "'$(Configuration)|$(Platform)'=='Release|x64'",
			ClCompile: VSCppCompileDef{
				WarningLevel:                 "Level3",
				SDLCheck:                     true,
				AdditionalIncludeDirectories: g.includeDirectories(),
				PreprocessorDefinitions:      g.preprocessorDefinitions(false),
				ConformanceMode:              true,
				Optimization:                 "MaxSpeed",
				RuntimeLibrary:               "MultiThreadedDLL",
				FunctionLevelLinking:         &trueVal,
				IntrinsicFunctions:           &trueVal,
			},
			Link: VSLinkDef{
				SubSystem:                g.subSystem(),
				GenerateDebugInformation: &falseVal,
				AdditionalDependencies:   "%(AdditionalDependencies)",
				EnableCOMDATFolding:      &trueVal,
				OptimizeReferences:       &trueVal,
				ProgramDataBaseFile:      `$(OutDir)$(TargetName).pdb`,
				AdditionalOptions:        "%(AdditionalOptions) /machine:x64",
			},
		},
	}
}
