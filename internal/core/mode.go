package core

type Mode string

const (
	ModeProduction  Mode = "production"
	ModeDevelopment Mode = "development"
)

func (m Mode) IsDev() bool {
	return m == ModeDevelopment
}

// BuildTarget tells the host renderer build what kind of bundle it is producing.
type BuildTarget string

const (
	TargetWeb      BuildTarget = "web"
	TargetElectron BuildTarget = "electron"
)

const (
	TargetElectronMain     = "electron-main"
	TargetElectronRenderer = "electron-renderer"
)
