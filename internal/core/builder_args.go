package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/pflag"
)

// BuilderArgs is what spark understands of the electron-builder command line.
// Raw is forwarded to electron-builder as-is.
type BuilderArgs struct {
	Mac         []string
	Win         []string
	Linux       []string
	Archs       []string
	Dir         bool
	Publish     string
	ProjectDir  string
	Prepackaged string
	Raw         []string
}

func (a BuilderArgs) Platforms() []string {
	var platforms []string
	if a.Mac != nil {
		platforms = append(platforms, "mac")
	}
	if a.Win != nil {
		platforms = append(platforms, "win")
	}
	if a.Linux != nil {
		platforms = append(platforms, "linux")
	}
	return platforms
}

// StripModeFlag removes --mode, which the host build understands but
// electron-builder would misread.
func StripModeFlag(args []string) []string {
	return stripValueFlag(args, "--mode", "")
}

// ExtractBoolFlag reports whether name is present and returns args without it.
func ExtractBoolFlag(args []string, name string) (bool, []string) {
	found := false
	rest := lo.Filter(args, func(arg string, _ int) bool {
		if arg == name || arg == name+"=true" {
			found = true
			return false
		}
		if arg == name+"=false" {
			return false
		}
		return true
	})
	return found, rest
}

func ParseBuilderArgs(args []string) (BuilderArgs, error) {
	var parsed BuilderArgs
	var x64, ia32, armv7l, arm64, universal bool

	fs := pflag.NewFlagSet("electron-builder", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.ParseErrorsWhitelist.UnknownFlags = true

	mac := fs.StringSliceP("mac", "m", nil, "Build for macOS")
	win := fs.StringSliceP("win", "w", nil, "Build for Windows")
	linux := fs.StringSliceP("linux", "l", nil, "Build for Linux")
	for _, name := range []string{"mac", "win", "linux"} {
		fs.Lookup(name).NoOptDefVal = "default"
	}
	fs.BoolVar(&x64, "x64", false, "Build for x64")
	fs.BoolVar(&ia32, "ia32", false, "Build for ia32")
	fs.BoolVar(&armv7l, "armv7l", false, "Build for armv7l")
	fs.BoolVar(&arm64, "arm64", false, "Build for arm64")
	fs.BoolVar(&universal, "universal", false, "Build for universal")
	fs.BoolVar(&parsed.Dir, "dir", false, "Build unpacked dir")
	fs.StringVarP(&parsed.Publish, "publish", "p", "", "Publish artifacts")
	fs.StringVar(&parsed.Prepackaged, "prepackaged", "", "The path to prepackaged app")
	fs.StringVar(&parsed.Prepackaged, "pd", "", "The path to prepackaged app")
	fs.StringVar(&parsed.ProjectDir, "projectDir", "", "The path to project directory")
	fs.StringVar(&parsed.ProjectDir, "project", "", "The path to project directory")
	config := fs.StringP("config", "c", "", "The path to an electron-builder config")

	if err := fs.Parse(args); err != nil {
		return BuilderArgs{}, fmt.Errorf("invalid electron-builder arguments: %w", err)
	}

	if fs.Changed("mac") {
		parsed.Mac = targetsOrEmpty(*mac)
	}
	if fs.Changed("win") {
		parsed.Win = targetsOrEmpty(*win)
	}
	if fs.Changed("linux") {
		parsed.Linux = targetsOrEmpty(*linux)
	}

	archFlags := []struct {
		name string
		set  bool
	}{{"x64", x64}, {"ia32", ia32}, {"armv7l", armv7l}, {"arm64", arm64}, {"universal", universal}}
	for _, arch := range archFlags {
		if arch.set {
			parsed.Archs = append(parsed.Archs, arch.name)
		}
	}

	raw := args
	if *config != "" {
		// The merged config is always passed explicitly.
		raw = stripValueFlag(raw, "--config", "-c")
	}
	parsed.Raw = append([]string{}, raw...)

	return parsed, nil
}

func targetsOrEmpty(values []string) []string {
	targets := lo.Filter(values, func(v string, _ int) bool { return v != "default" && v != "" })
	if targets == nil {
		return []string{}
	}
	return targets
}

func stripValueFlag(args []string, long, short string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == long || (short != "" && arg == short) {
			i++
			continue
		}
		if strings.HasPrefix(arg, long+"=") || (short != "" && strings.HasPrefix(arg, short+"=")) {
			continue
		}
		out = append(out, arg)
	}
	return out
}
