// croft doctor
package cmd

import (
	"fmt"
	"os/exec"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/croft-build/croft/internal/export"
)

func reportTool(name, path string, err error) {
	if err != nil || path == "" {
		fmt.Printf("%s %s: not found\n", color.YellowString("?"), name)
		return
	}
	fmt.Printf("%s %s: %s\n", color.HiGreenString("+"), name, path)
}

func doDoctor(cmd *cobra.Command, args []string) {
	cc := export.FindCompiler(false)
	cxx := export.FindCompiler(true)
	reportTool("cc", cc, nil)
	reportTool("cxx", cxx, nil)

	ninja, err := exec.LookPath("ninja")
	reportTool("ninja", ninja, err)

	makeBin, err := exec.LookPath("make")
	reportTool("make", makeBin, err)

	msbuild, err := export.FindMSBuild()
	reportTool("msbuild", msbuild, err)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check which toolchains the exporters can target on this machine",
	Args:  cobra.NoArgs,
	Run:   doDoctor,
}

func init() {
	// croft doctor subcommand
	rootCmd.AddCommand(doctorCmd)
}
