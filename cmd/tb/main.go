// Command tb shows a configurable toolbar in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/toolbar/internal/state"
	"github.com/vanderheijden86/toolbar/pkg/config"
	"github.com/vanderheijden86/toolbar/pkg/debug"
	"github.com/vanderheijden86/toolbar/pkg/export"
	"github.com/vanderheijden86/toolbar/pkg/hooks"
	"github.com/vanderheijden86/toolbar/pkg/metrics"
	"github.com/vanderheijden86/toolbar/pkg/model"
	"github.com/vanderheijden86/toolbar/pkg/toolbar"
	"github.com/vanderheijden86/toolbar/pkg/ui"
	"github.com/vanderheijden86/toolbar/pkg/version"
	"github.com/vanderheijden86/toolbar/pkg/watcher"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tb", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Config file (default: $XDG_CONFIG_HOME/tb/config.yaml)")
	robotItems := fs.Bool("robot-items", false, "Print the toolbar state as JSON and exit")
	selectRefs := fs.String("select", "", "Comma-separated items to select before starting (id, index, _first, _last)")
	exportPaths := fs.String("export", "", "Comma-separated .svg/.png/.mmd paths to render the toolbar to, then exit")
	addItem := fs.Bool("add", false, "Add an item to the config interactively")
	noState := fs.Bool("no-state", false, "Do not restore or save remembered selections")
	noHooks := fs.Bool("no-hooks", false, "Do not run configured click hooks")
	cpuProfile := fs.String("cpu-profile", "", "Write CPU profile to file")
	help := fs.Bool("help", false, "Show help")
	versionFlag := fs.Bool("version", false, "Show version")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Fprintln(stdout, "Usage: tb [options]")
		fmt.Fprintln(stdout, "\nA terminal toolbar with exclusive groups and expanders.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return 0
	}

	if *versionFlag {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	for _, w := range cfg.Warnings() {
		fmt.Fprintf(stderr, "Warning: %s\n", w)
	}

	if *addItem {
		d, err := cfg.Toolbar.RunAddItemWizard()
		if err != nil {
			fmt.Fprintf(stderr, "Error adding item: %v\n", err)
			return 1
		}
		if err := config.SaveTo(cfg, path); err != nil {
			fmt.Fprintf(stderr, "Error saving config: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Added %s item %q to %s\n", d.EffectiveType(), d.ID, path)
		return 0
	}

	if *noHooks {
		cfg.Hooks = nil
	}

	m, err := ui.NewModel(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error building toolbar: %v\n", err)
		return 1
	}
	tb := m.Toolbar()

	ctx := context.Background()

	var store *state.Store
	if !*noState && !cfg.State.Disabled {
		store, err = state.Open(cfg.StatePath())
		if err != nil {
			// Non-fatal: run without remembered state
			fmt.Fprintf(stderr, "Warning: %v\n", err)
			store = nil
		} else {
			defer store.Close()
			if n, err := store.Restore(ctx, cfg.Toolbar.Name, tb); err != nil {
				fmt.Fprintf(stderr, "Warning: restoring state: %v\n", err)
			} else {
				debug.Log("tb: restored %d selections", n)
			}
		}
	}

	if refs := splitList(*selectRefs); len(refs) > 0 {
		exec := cfg.HookExecutor()
		err := applySelections(ctx, tb, refs, exec, cfg.Toolbar.Name)
		if summary := exec.Summary(); summary != "" {
			fmt.Fprintln(stderr, summary)
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if store != nil {
			if err := store.Save(ctx, cfg.Toolbar.Name, tb.Snapshot()); err != nil {
				fmt.Fprintf(stderr, "Warning: saving state: %v\n", err)
			}
		}
	}

	if *robotItems {
		if err := writeRobotItems(stdout, cfg.Toolbar.Name, tb.Snapshot()); err != nil {
			fmt.Fprintf(stderr, "Error encoding items: %v\n", err)
			return 1
		}
		return 0
	}

	if paths := splitList(*exportPaths); len(paths) > 0 {
		if err := export.SaveSnapshots(ctx, tb.Snapshot(), cfg.Toolbar.Name, paths...); err != nil {
			fmt.Fprintf(stderr, "Error exporting: %v\n", err)
			return 1
		}
		for _, p := range paths {
			fmt.Fprintf(stdout, "Wrote %s\n", p)
		}
		return 0
	}

	if store != nil {
		m = m.WithSaver(store)
	}
	if w, err := watcher.New(path, watcher.WithOnError(func(err error) {
		debug.Log("tb: watching config: %v", err)
	})); err == nil {
		if err := w.Start(ctx); err == nil {
			m = m.WithWatcher(w, path)
		}
	}
	defer m.Stop()

	if err := runTUIProgram(m); err != nil {
		fmt.Fprintf(stderr, "Error running tb: %v\n", err)
		return 1
	}

	if metrics.Enabled() {
		for _, s := range metrics.AllTimingStats() {
			fmt.Fprintf(stderr, "%s: n=%d avg=%.2fms max=%.2fms\n", s.Name, s.Count, s.AvgMs, s.MaxMs)
		}
	}
	return 0
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set TB_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("TB_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

// applySelections clicks each referenced item in order. A declined
// selection is not an error.
// applySelections clicks each ref in order, running the hooks each click
// matches. exec may be nil.
func applySelections(ctx context.Context, tb *toolbar.Toolbar, refs []string, exec *hooks.Executor, name string) error {
	for _, s := range refs {
		it := tb.Item(toolbar.ParseRef(s))
		if it == nil {
			return fmt.Errorf("%w: %s", toolbar.ErrNotFound, s)
		}
		ok, err := tb.SelectItem(toolbar.Handle(it))
		if err != nil {
			return err
		}
		if !ok {
			debug.Log("tb: selection of %s declined", it.ID)
		}
		if exec.Len() == 0 {
			continue
		}
		cc := hooks.ClickContext{
			Toolbar:   name,
			ItemID:    it.ID,
			Group:     it.Group,
			Active:    it.Active(),
			Timestamp: time.Now(),
		}
		if err := exec.Run(ctx, cc, it.Kind == model.KindExpanderProxy); err != nil {
			return err
		}
	}
	return nil
}

type robotOutput struct {
	Toolbar  string           `json:"toolbar"`
	Version  string           `json:"version"`
	Snapshot toolbar.Snapshot `json:"snapshot"`
}

func writeRobotItems(w io.Writer, name string, snap toolbar.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(robotOutput{Toolbar: name, Version: version.Version, Snapshot: snap})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
