// croft init [name], croft new [path]
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/croft-build/croft/internal/msg"
	"github.com/croft-build/croft/internal/project"
)

func writefile(content string, elem ...string) {
	path := filepath.Join(elem...)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err = os.WriteFile(path, []byte(content), 0o644); err != nil {
			msg.Fatal("create file %s: %v", path, err)
		}
		fmt.Printf("%s file: %s\n", color.HiGreenString("Created"), filepath.ToSlash(path))
	}
}

func mkdir(elem ...string) {
	path := filepath.Join(elem...)
	if err := os.MkdirAll(path, 0o755); err != nil {
		msg.Fatal("mkdir %s: %v", path, err)
	}
}

func getProgramName() string {
	if len(os.Args) == 0 {
		return "croft"
	}
	basename := filepath.Base(os.Args[0])
	return strings.TrimSuffix(basename, filepath.Ext(basename))
}

// newProjectUID makes the short unique id baked into header guards
func newProjectUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}

// initIn initializes a project in an existing specified directory
func initIn(dir, name, kind string) {
	// plain keys must precede the table headers or TOML files them
	// under [project]
	writefile(`modules = ["croft_core"]
exporters = ["`+defaultExporterFor(kind)+`"]

[project]
name = "`+name+`"
version = "1.0.0"
uid = "`+newProjectUID()+`"
kind = "`+kind+`"

[flags]
`, dir, project.Filename)

	mkdir(dir, "Source")
	writefile(`#include <CroftHeader.h>

int main()
{
    return 0;
}
`, dir, "Source", "Main.cpp")

	// .gitignore
	writefile(`Builds/
`+project.GeneratedDirName+`/
`, dir, ".gitignore")

	programName := getProgramName()
	fmt.Printf("You can now do %s to save the project and generate its files.\n",
		color.HiCyanString(programName+" "+dir))
}

func defaultExporterFor(kind string) string {
	if kind == project.KindNameLibrary {
		return "make"
	}
	return "vs2022"
}

var flagKind EnumValue = NewEnumValue(project.KindNameGUIApp, map[string]string{
	project.KindNameGUIApp:     "A windowed application",
	project.KindNameConsoleApp: "A command-line application",
	project.KindNameLibrary:    "A static library",
})

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a new project in the current directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initIn(".", args[0], flagKind.Value())
	},
}

var newCmd = &cobra.Command{
	Use:   "new [path]",
	Short: "Create a new project in a new directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mkdir(args[0])
		initIn(args[0], filepath.Base(args[0]), flagKind.Value())
	},
}

func init() {
	// croft init subcommand
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().VarP(&flagKind, "kind", "k", "Project kind, one of "+flagKind.HelpString())
	initCmd.RegisterFlagCompletionFunc("kind", flagKind.CompletionFunc())

	// croft new subcommand
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().VarP(&flagKind, "kind", "k", "Project kind, one of "+flagKind.HelpString())
	newCmd.RegisterFlagCompletionFunc("kind", flagKind.CompletionFunc())
}
