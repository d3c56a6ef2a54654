// Command inkpad is a desktop sketch pad built on the ink engine.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/gogpu/ink"
	"github.com/gogpu/ink/export"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML settings file")
		scale      = flag.Float64("scale", 0, "device-pixel ratio (overrides the config)")
		workers    = flag.Int("workers", -1, "rasteriser goroutines, 0 for none (overrides the config)")
		debug      = flag.Bool("debug", false, "log engine events to stderr")
	)
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			log.Fatalf("inkpad: %v", err)
		}
	}
	if *scale > 0 {
		cfg.Window.Scale = *scale
	}
	if *workers >= 0 {
		cfg.Window.Workers = *workers
	}

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	ink.SetLogger(logger)

	if err := run(cfg, logger); err != nil {
		log.Fatalf("inkpad: %v", err)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	presets, err := pens(cfg)
	if err != nil {
		return err
	}
	engine := ink.New(engineOptions(cfg, presets[0].style)...)
	defer engine.Close()

	a := app.NewWithID("io.gogpu.inkpad")
	w := a.NewWindow(cfg.Window.Title)
	w.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))

	pad := NewPad(engine, cfg.Eraser.Radius, logger)
	status := widget.NewLabel("Ready")
	pad.OnStatus = status.SetText

	applyScheme := func() {
		s := currentScheme(cfg.Window.Scheme, a.Settings().ThemeVariant())
		if s != engine.ColorScheme() {
			engine.SetColorScheme(s)
			pad.Refresh()
		}
	}
	applyScheme()
	if autoScheme(cfg.Window.Scheme) {
		changes := make(chan fyne.Settings)
		a.Settings().AddChangeListener(changes)
		go func() {
			for range changes {
				fyne.Do(applyScheme)
			}
		}()
	}

	w.SetContent(container.NewBorder(toolbar(w, engine, pad, presets, status), status, nil, nil, pad))
	w.ShowAndRun()
	return nil
}

type preset struct {
	name  string
	style ink.PenStyle
}

func pens(cfg Config) ([]preset, error) {
	out := make([]preset, 0, len(cfg.Pens))
	for i, p := range cfg.Pens {
		s, err := p.Style()
		if err != nil {
			return nil, fmt.Errorf("pen %d: %w", i, err)
		}
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("Pen %d", i+1)
		}
		out = append(out, preset{name: name, style: s})
	}
	if len(out) == 0 {
		out = append(out, preset{name: "Pen", style: ink.DefaultPenStyle()})
	}
	return out, nil
}

func engineOptions(cfg Config, tool ink.PenStyle) []ink.Option {
	opts := []ink.Option{
		ink.WithInitialTool(tool),
		ink.WithScale(cfg.Window.Scale),
	}
	if cfg.Window.Workers != 0 {
		opts = append(opts, ink.WithWorkers(cfg.Window.Workers), ink.WithDeferredOutlines(true))
	}
	if cfg.Window.Split {
		opts = append(opts, ink.WithEraseStrategy(ink.SplitStroke))
	}
	if s, err := parseScheme(cfg.Window.Scheme); err == nil && !autoScheme(cfg.Window.Scheme) {
		opts = append(opts, ink.WithColorScheme(s))
	}
	return opts
}

// currentScheme resolves "auto" against the desktop theme variant.
func currentScheme(setting string, variant fyne.ThemeVariant) ink.ColorScheme {
	if autoScheme(setting) {
		if variant == theme.VariantDark {
			return ink.Dark
		}
		return ink.Light
	}
	s, _ := parseScheme(setting)
	return s
}

func toolbar(w fyne.Window, engine *ink.Engine, pad *Pad, presets []preset, status *widget.Label) fyne.CanvasObject {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.name
	}
	picker := widget.NewSelect(names, func(name string) {
		for _, p := range presets {
			if p.name == name {
				pad.SetErasing(false)
				engine.SetActiveTool(p.style)
				status.SetText(fmt.Sprintf("%s, %s", p.name, p.style.Layer))
				return
			}
		}
	})
	picker.SetSelected(names[0])

	eraser := widget.NewCheck("Eraser", pad.SetErasing)

	clearAll := widget.NewButtonWithIcon("Clear", theme.DeleteIcon(), func() {
		n := 0
		for _, l := range ink.Layers() {
			n += engine.Clear(l)
		}
		pad.Refresh()
		status.SetText(fmt.Sprintf("cleared %d strokes", n))
	})

	save := widget.NewButtonWithIcon("PDF", theme.DocumentSaveIcon(), func() {
		dialog.ShowFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if wc == nil {
				return
			}
			defer wc.Close()
			err = export.PDF(wc, engine.Snapshot(),
				export.WithScheme(engine.ColorScheme()),
				export.WithBackground(background(engine.ColorScheme())),
				export.WithTitle(wc.URI().Name()),
			)
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("saved " + wc.URI().Name())
		}, w)
	})

	return container.NewHBox(picker, eraser, clearAll, save)
}

func background(s ink.ColorScheme) color.Color {
	if s == ink.Dark {
		return color.NRGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff}
	}
	return color.White
}
