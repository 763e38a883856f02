package core

import "path/filepath"

type Process interface {
	Pid() int
	Kill() error
	Done() <-chan struct{}
}

type LaunchSpec struct {
	Args []string
	Dir  string
	Env  map[string]string
}

func ElectronLaunchSpec(s Settings) LaunchSpec {
	return LaunchSpec{
		Args: []string{filepath.ToSlash(filepath.Join(s.OutputDir, MainBundleFile))},
		Dir:  s.ProjectDir,
		Env: map[string]string{
			"ELECTRON_DISABLE_SECURITY_WARNINGS": "true",
		},
	}
}

type SupervisorState string

const (
	StateIdle       SupervisorState = "idle"
	StateBuilding   SupervisorState = "building"
	StateRunning    SupervisorState = "running"
	StateRestarting SupervisorState = "restarting"
	StateTerminated SupervisorState = "terminated"
)
