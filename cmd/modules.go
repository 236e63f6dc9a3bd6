// croft modules
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/croft-build/croft/internal/catalog"
	"github.com/croft-build/croft/internal/msg"
	"github.com/croft-build/croft/internal/project"
)

// openProjectCatalog loads the catalog for the project in the current
// directory, or for a bare modules directory when there's no project
func openProjectCatalog() *catalog.Catalog {
	cwd, err := os.Getwd()
	if err != nil {
		msg.Fatal("could not get current directory: %v", err)
	}

	dir := filepath.Join(cwd, catalog.DefaultDirName)
	if proj, err := project.Load(filepath.Join(cwd, project.Filename)); err == nil {
		dir = catalog.Dir(proj)
	}

	cat, err := catalog.Open(dir)
	if err != nil {
		msg.Fatal("failed to open module catalog: %v", err)
	}
	return cat
}

func doModulesList() {
	cat := openProjectCatalog()

	ids := cat.IDs()
	sort.Strings(ids)
	if len(ids) == 0 {
		msg.Warn("no modules installed")
		return
	}

	for _, id := range ids {
		mod, _ := cat.Module(id)
		if desc := mod.Description(); desc != "" {
			fmt.Printf("%s - %s\n", id, desc)
		} else {
			fmt.Println(id)
		}
	}
}

func doModulesAdd(id, source string) {
	cat := openProjectCatalog()

	mod, err := cat.Install(id, source)
	if err != nil {
		msg.Fatal("%v", err)
	}
	msg.Info("installed module %s from %s", mod.ID(), source)
}

var modulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed modules",
	Run: func(cmd *cobra.Command, args []string) {
		doModulesList()
	},
}

var modulesAddCmd = &cobra.Command{
	Use:   "add <id> <source>",
	Short: "Fetch and install a module from a git URL, host shortcut or local path",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		doModulesAdd(args[0], args[1])
	},
}

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Manage the project's module catalog",
}

func init() {
	// croft modules subcommand
	modulesCmd.AddCommand(modulesListCmd)
	modulesCmd.AddCommand(modulesAddCmd)
	rootCmd.AddCommand(modulesCmd)
}
