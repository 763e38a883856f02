package core

import "path/filepath"

// RendererConfig is handed to the host renderer build. It carries what the
// renderer bundle needs to run inside an Electron window.
type RendererConfig struct {
	Target     string            `json:"target"`
	Mode       Mode              `json:"mode"`
	PublicPath string            `json:"publicPath,omitempty"`
	Node       NodeOptions       `json:"node"`
	Define     map[string]string `json:"define"`
	Env        map[string]string `json:"env,omitempty"`
}

type RendererRequest struct {
	Target    BuildTarget
	Mode      Mode
	Dashboard bool
	Dest      string
	Modern    bool
	Config    *RendererConfig
}

func NewRendererConfig(s Settings, mode Mode) *RendererConfig {
	cfg := &RendererConfig{
		Target: TargetElectronRenderer,
		Mode:   mode,
		Node:   NodeOptions{Dirname: false, Filename: false},
		Define: map[string]string{},
		Env:    map[string]string{},
	}

	if mode.IsDev() {
		cfg.Define["__static"] = jsonString(s.Abs(PublicDir))
	} else {
		// The app protocol serves files relative to the bundle.
		cfg.PublicPath = "./"
		cfg.Define["process.env.BASE_URL"] = "__dirname"
		cfg.Define["__static"] = "__dirname"
	}

	if s.ChainRendererProcess != nil {
		if chained := s.ChainRendererProcess(cfg); chained != nil {
			cfg = chained
		}
	}
	return cfg
}

func NewRendererBuildRequest(s Settings, dashboard bool) RendererRequest {
	return RendererRequest{
		Target:    TargetElectron,
		Mode:      ModeProduction,
		Dashboard: dashboard,
		Dest:      filepath.ToSlash(filepath.Join(s.OutputDir, BundledDir)),
		Modern:    true,
		Config:    NewRendererConfig(s, ModeProduction),
	}
}

func NewRendererServeRequest(s Settings, dashboard bool) RendererRequest {
	return RendererRequest{
		Target:    TargetElectron,
		Mode:      ModeDevelopment,
		Dashboard: dashboard,
		Config:    NewRendererConfig(s, ModeDevelopment),
	}
}
