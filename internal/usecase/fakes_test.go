package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/3-lines-studio/spark/internal/core"
)

type fakeOutput struct {
	mu     sync.Mutex
	lines  []string
	errors []string
	warns  []string

	// Build reports render here.
	out    bytes.Buffer
	errOut bytes.Buffer
}

func (o *fakeOutput) record(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines = append(o.lines, line)
}

func (o *fakeOutput) PrintHeader(msg string)                   { o.record(msg) }
func (o *fakeOutput) PrintStep(emoji, msg string, args ...any) { o.record(fmt.Sprintf(msg, args...)) }
func (o *fakeOutput) PrintSuccess(msg string, args ...any)     { o.record(fmt.Sprintf(msg, args...)) }
func (o *fakeOutput) PrintFile(path string)                    { o.record(path) }
func (o *fakeOutput) PrintDone(msg string)                     { o.record(msg) }
func (o *fakeOutput) Println(line string)                      { o.record(line) }
func (o *fakeOutput) Green(text string) string                 { return text }
func (o *fakeOutput) Yellow(text string) string                { return text }
func (o *fakeOutput) Red(text string) string                   { return text }
func (o *fakeOutput) Gray(text string) string                  { return text }
func (o *fakeOutput) Out() io.Writer                           { return &o.out }
func (o *fakeOutput) ErrOut() io.Writer                        { return &o.errOut }

func (o *fakeOutput) PrintWarning(msg string, args ...any) {
	line := fmt.Sprintf(msg, args...)
	o.record(line)
	o.mu.Lock()
	o.warns = append(o.warns, line)
	o.mu.Unlock()
}

func (o *fakeOutput) PrintError(msg string, args ...any) {
	line := fmt.Sprintf(msg, args...)
	o.record(line)
	o.mu.Lock()
	o.errors = append(o.errors, line)
	o.mu.Unlock()
}

func (o *fakeOutput) Lines() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string{}, o.lines...)
}

func (o *fakeOutput) Errors() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string{}, o.errors...)
}

func (o *fakeOutput) Warnings() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string{}, o.warns...)
}

func (o *fakeOutput) Contains(substr string) bool {
	for _, line := range o.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

type fakeProcess struct {
	pid   int
	done  chan struct{}
	once  sync.Once
	kills atomic.Int32
}

func newFakeProcess(pid int) *fakeProcess {
	return &fakeProcess{pid: pid, done: make(chan struct{})}
}

func (p *fakeProcess) Pid() int              { return p.pid }
func (p *fakeProcess) Done() <-chan struct{} { return p.done }

func (p *fakeProcess) Kill() error {
	p.kills.Add(1)
	p.exit()
	return nil
}

func (p *fakeProcess) exit() {
	p.once.Do(func() { close(p.done) })
}

func (p *fakeProcess) Kills() int {
	return int(p.kills.Load())
}

type fakeLauncher struct {
	mu    sync.Mutex
	procs []*fakeProcess
	specs []core.LaunchSpec
	err   error
}

func (l *fakeLauncher) Launch(ctx context.Context, spec core.LaunchSpec) (core.Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	proc := newFakeProcess(1000 + len(l.procs))
	l.procs = append(l.procs, proc)
	l.specs = append(l.specs, spec)
	return proc, nil
}

func (l *fakeLauncher) Launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.procs)
}

func (l *fakeLauncher) Proc(i int) *fakeProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.procs[i]
}

type compileResult struct {
	stats *core.Stats
	err   error
}

type fakeCompiler struct {
	mu      sync.Mutex
	results []compileResult
	configs []*core.BundleConfig
}

func (c *fakeCompiler) Compile(ctx context.Context, cfg *core.BundleConfig) (*core.Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs = append(c.configs, cfg)

	if len(c.results) == 0 {
		return &core.Stats{Mode: cfg.Mode, Outputs: []core.OutputFile{{Path: "dist_electron/background.js", Bytes: 10}}}, nil
	}
	result := c.results[0]
	if len(c.results) > 1 {
		c.results = c.results[1:]
	}
	return result.stats, result.err
}

func (c *fakeCompiler) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.configs)
}

func (c *fakeCompiler) Config(i int) *core.BundleConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.configs[i]
}

type fakeWatcher struct {
	events chan string
	errors chan error
	closed atomic.Bool
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{
		events: make(chan string, 10),
		errors: make(chan error, 10),
	}
}

func (w *fakeWatcher) Events() <-chan string { return w.events }
func (w *fakeWatcher) Errors() <-chan error  { return w.errors }

func (w *fakeWatcher) Close() error {
	w.closed.Store(true)
	return nil
}

type fakeRenderer struct {
	requests []core.RendererRequest
	onBuild  func(req core.RendererRequest) error
}

func (r *fakeRenderer) Build(ctx context.Context, req core.RendererRequest) error {
	r.requests = append(r.requests, req)
	if r.onBuild != nil {
		return r.onBuild(req)
	}
	return nil
}

type fakePackager struct {
	calls  int
	args   []string
	config map[string]any
	err    error
}

func (p *fakePackager) Package(ctx context.Context, args []string, config map[string]any) error {
	p.calls++
	p.args = args
	p.config = config
	return p.err
}

type fakeDevServer struct {
	url      string
	err      error
	requests []core.RendererRequest
	stopped  atomic.Bool
}

func (d *fakeDevServer) Start(ctx context.Context, req core.RendererRequest) (string, func() error, error) {
	d.requests = append(d.requests, req)
	if d.err != nil {
		return "", nil, d.err
	}
	return d.url, func() error {
		d.stopped.Store(true)
		return nil
	}, nil
}
