package export

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/heaths/go-vssetup"
)

var errNoMSBuild = errors.New("no Visual Studio installation with MSBuild found")

// FindMSBuild locates MSBuild.exe through the Visual Studio setup
// configuration API. Fails on machines without a VS install (or on
// non-Windows hosts).
func FindMSBuild() (string, error) {
	instances, err := vssetup.Instances(false)
	if err != nil {
		return "", err
	}

	for _, instance := range instances {
		root, err := instance.InstallationPath()
		if err != nil {
			continue
		}
		msbuild := filepath.Join(root, "MSBuild", "Current", "Bin", "MSBuild.exe")
		if _, err := os.Stat(msbuild); err == nil {
			return msbuild, nil
		}
	}

	return "", errNoMSBuild
}
