// croft [path], croft save [path]
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/croft-build/croft/internal/catalog"
	"github.com/croft-build/croft/internal/msg"
	"github.com/croft-build/croft/internal/project"
	"github.com/croft-build/croft/internal/saver"
)

var flagSaveAs string

// resolveProjectFile accepts either a project file or a directory holding one
func resolveProjectFile(target string) string {
	if stat, err := os.Stat(target); err == nil && stat.IsDir() {
		return filepath.Join(target, project.Filename)
	}
	return target
}

func doSave(cmd *cobra.Command, args []string) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}

	proj, err := project.Load(resolveProjectFile(target))
	if err != nil {
		msg.Fatal("%v", err)
	}

	cat, err := catalog.Open(catalog.Dir(proj))
	if err != nil {
		msg.Fatal("%v", err)
	}

	dest := proj.File()
	if flagSaveAs != "" {
		dest, err = filepath.Abs(flagSaveAs)
		if err != nil {
			msg.Fatal("%v", err)
		}
	}

	s := saver.New(proj, dest, cat)
	if err := s.Save(); err != nil {
		msg.Fatal("%v", err)
	}
	msg.Info("saved %s (%d generated files)", proj.Name(), len(s.GeneratedGroup().Files()))
}

var rootCmd = &cobra.Command{
	Use:   "croft [project path]",
	Short: "Project generator for the Croft framework",
	Long:  `Saves a Croft project: regenerates its library code and writes native project files for every requested toolchain.`,
	Args:  cobra.MaximumNArgs(1),
	Run:   doSave,
}

var saveCmd = &cobra.Command{
	Use:   "save [project path]",
	Short: "Save the project and regenerate its files",
	Long:  `Save the project and regenerate its files. If no project path is given, uses "."`,
	Args:  cobra.MaximumNArgs(1),
	Run:   doSave,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&msg.Verbose, "verbose", "v", false, "Show what changed in rewritten files")

	addSaveFlags(rootCmd)

	// croft save subcommand
	rootCmd.AddCommand(saveCmd)
	addSaveFlags(saveCmd)
}

func addSaveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagSaveAs, "as", "", "Save the project file to a different location")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
