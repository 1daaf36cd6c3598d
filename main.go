package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/afero"

	"qiv/internal/decode"
	"qiv/internal/filelist"
	"qiv/internal/geometry"
	"qiv/internal/icc"
)

var debugMode bool

func debugLog(format string, args ...any) {
	if debugMode {
		log.Printf("DEBUG: "+format, args...)
	}
}

// cliOptions holds the command line; only flags that were given override
// the config file.
type cliOptions struct {
	configPath  string
	writeConfig bool
	debug       bool

	fullscreen    bool
	maxpect       bool
	scaleDown     bool
	noCenter      bool
	statusbar     bool
	transparency  bool
	random        bool
	randomReplace bool
	shuffle       bool
	slideshow     bool
	delay         float64
	brightness    int
	contrast      int
	gamma         int
	fixedWidth    int
	fixedZoom     int
	rotate        int
	noAutorotate  bool
	colorManage   bool
	profile       string
	command       string
	maxFiles      int

	set map[string]bool
}

// parseArgs parses the command line into options and file arguments.
func parseArgs(args []string, output io.Writer) (*cliOptions, []string, error) {
	o := &cliOptions{set: make(map[string]bool)}
	fs := flag.NewFlagSet("qiv", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: qiv [options] files|directories|archives...\n\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&o.configPath, "config", getConfigPath(), "config file")
	fs.BoolVar(&o.writeConfig, "write-config", false, "write the effective config and exit")
	fs.BoolVar(&o.debug, "debug", os.Getenv("QIV_DEBUG") == "1", "debug logging")

	fs.BoolVar(&o.fullscreen, "fullscreen", false, "start in fullscreen")
	fs.BoolVar(&o.maxpect, "maxpect", false, "fit images to the screen")
	fs.BoolVar(&o.scaleDown, "scale-down", false, "shrink images larger than the screen")
	fs.BoolVar(&o.noCenter, "no-center", false, "do not center images")
	fs.BoolVar(&o.statusbar, "statusbar", false, "show the status bar")
	fs.BoolVar(&o.transparency, "transparency", false, "show transparent pixels through the window")
	fs.BoolVar(&o.random, "random", false, "random order")
	fs.BoolVar(&o.randomReplace, "random-replace", false, "random order with replacement")
	fs.BoolVar(&o.shuffle, "shuffle", false, "shuffle the list once at startup")
	fs.BoolVar(&o.slideshow, "slide", false, "start the slideshow")
	fs.Float64Var(&o.delay, "delay", defaultSlideDelay/1000.0, "slideshow delay in seconds")
	fs.IntVar(&o.brightness, "brightness", 0, "brightness offset (-32..32)")
	fs.IntVar(&o.contrast, "contrast", 0, "contrast offset (-32..32)")
	fs.IntVar(&o.gamma, "gamma", 0, "gamma offset (-32..32)")
	fs.IntVar(&o.fixedWidth, "fixed-width", 0, "window width in pixels")
	fs.IntVar(&o.fixedZoom, "fixed-zoom", 100, "zoom in percent")
	fs.IntVar(&o.rotate, "rotate", 0, "rotation: 0-3 quarter turns, 11/13 only when it helps to fit")
	fs.BoolVar(&o.noAutorotate, "no-autorotate", false, "ignore EXIF orientation")
	fs.BoolVar(&o.colorManage, "color-manage", false, "apply embedded colour profiles")
	fs.StringVar(&o.profile, "display-profile", "", "ICC profile of the display")
	fs.StringVar(&o.command, "command", "", "helper run by the digit keys (default qiv-command)")
	fs.IntVar(&o.maxFiles, "max-files", defaultMaxFiles, "maximum number of files to load")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, fs.Args(), nil
}

// applyFlags overrides config with the flags that were given.
func applyFlags(config *Config, o *cliOptions) []string {
	var warnings []string
	set := o.set

	if set["fullscreen"] {
		config.Fullscreen = o.fullscreen
	}
	if set["maxpect"] {
		config.Maxpect = o.maxpect
	}
	if set["scale-down"] {
		config.ScaleDown = o.scaleDown
	}
	if set["no-center"] {
		config.Center = !o.noCenter
	}
	if set["statusbar"] {
		config.Statusbar = o.statusbar
	}
	if set["transparency"] {
		config.Transparency = o.transparency
	}
	if set["random"] {
		config.Random = o.random
	}
	if set["random-replace"] {
		config.Random = config.Random || o.randomReplace
		config.RandomReplace = o.randomReplace
	}
	if set["shuffle"] {
		config.Shuffle = o.shuffle
	}
	if set["slide"] {
		config.Slideshow = o.slideshow
	}
	if set["delay"] {
		config.SlideDelay = max(int(o.delay*1000), 100)
	}
	if set["brightness"] {
		config.Brightness = clampInt(o.brightness, -modifierRange, modifierRange)
	}
	if set["contrast"] {
		config.Contrast = clampInt(o.contrast, -modifierRange, modifierRange)
	}
	if set["gamma"] {
		config.Gamma = clampInt(o.gamma, -modifierRange, modifierRange)
	}
	if set["fixed-width"] {
		config.FixedWidth = max(o.fixedWidth, 0)
	}
	if set["fixed-zoom"] {
		config.FixedZoom = clampInt((o.fixedZoom-100)/10, geometry.MinZoomStep, 100)
	}
	if set["rotate"] {
		switch o.rotate {
		case 0, 1, 2, 3, 11, 13:
			config.Rotation = o.rotate
		default:
			warnings = append(warnings, fmt.Sprintf("ignoring -rotate %d", o.rotate))
		}
	}
	if set["no-autorotate"] {
		config.AutoRotate = !o.noAutorotate
	}
	if set["color-manage"] {
		config.ColorManage = o.colorManage
	}
	if set["display-profile"] {
		config.DisplayProfile = o.profile
	}
	if set["command"] {
		config.Command = o.command
	}
	if set["max-files"] && o.maxFiles > 0 {
		config.MaxFiles = o.maxFiles
	}
	return warnings
}

// loadDisplayProfile reads the configured display profile; an empty path
// means sRGB.
func loadDisplayProfile(fs afero.Fs, path string) (*icc.Profile, error) {
	if path == "" {
		return nil, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read display profile: %w", err)
	}
	profile, err := icc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse display profile %s: %w", path, err)
	}
	return profile, nil
}

// monitorRect returns the area images are fitted to.
func monitorRect(config Config) geometry.Rect {
	var w, h int
	if m := ebiten.Monitor(); m != nil {
		w, h = m.Size()
	}
	if w <= 0 || h <= 0 {
		w, h = config.WindowWidth, config.WindowHeight
	}
	return geometry.Rect{W: w, H: h}
}

func main() {
	opts, args, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	debugMode = opts.debug

	result := loadConfigFromPath(opts.configPath)
	for _, w := range applyFlags(&result.Config, opts) {
		log.Printf("Warning: %s", w)
		result.Warnings = append(result.Warnings, w)
		if result.Status != "Error" {
			result.Status = "Warning"
		}
	}
	config := result.Config

	if opts.writeConfig {
		if err := saveConfigToPath(config, opts.configPath); err != nil {
			log.Fatal(err)
		}
		return
	}

	entries := NewCollector(appFs, config).Collect(args)
	if len(entries) == 0 {
		log.Fatal("no image files specified")
	}

	opt := decode.DefaultOptions()
	opt.AutoRotate = config.AutoRotate
	opt.ColorManage = config.ColorManage
	if config.ColorManage {
		profile, err := loadDisplayProfile(appFs, config.DisplayProfile)
		if err != nil {
			log.Printf("Warning: %v, assuming sRGB", err)
		}
		opt.DisplayProfile = profile
	}

	preloadCount := 0
	if config.PreloadEnabled {
		preloadCount = config.PreloadCount
	}
	imageManager := NewImageManager(NewEntryLoader(appFs, decode.New(opt)), config.CacheSize, preloadCount)

	list := filelist.New(entries, config.DeleteHistorySize)
	list.Random = config.Random
	list.Replace = config.RandomReplace
	if config.Shuffle {
		list.Shuffle()
	}

	if err := InitGraphics(); err != nil {
		log.Fatal(err)
	}

	app := NewApp(result, list, imageManager, monitorRect(config))
	defer app.Close()
	app.Start()

	ebiten.SetScreenClearedEveryFrame(false)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	if err := ebiten.RunGameWithOptions(app, &ebiten.RunGameOptions{ScreenTransparent: true}); err != nil {
		log.Fatal(err)
	}
}
