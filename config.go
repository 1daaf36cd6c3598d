package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"qiv/internal/filelist"
)

// appFs is the file system used for the config file, collection and
// image loading.
var appFs afero.Fs = afero.NewOsFs()

// Fallback monitor size, used when the toolkit cannot report one
const (
	defaultWidth  = 1024
	defaultHeight = 768
	minWidth      = 320
	minHeight     = 240
)

// Sort method constants
const (
	SortNatural    = 0 // file2 before file10
	SortSimple     = 1 // bytewise
	SortEntryOrder = 2 // collection order
)

const (
	defaultSlideDelay = 3000 // milliseconds
	defaultMaxFiles   = 8192
	defaultMaxPathLen = 1024
	modifierRange     = 32
)

// ConfigLoadResult contains the result of loading configuration
type ConfigLoadResult struct {
	Config   Config
	HasError bool
	Warnings []string
	Status   string // "OK", "Default", "Warning", "Error"
}

type Config struct {
	WindowWidth  int     `json:"window_width"`
	WindowHeight int     `json:"window_height"`
	HelpFontSize float64 `json:"help_font_size"`
	SortMethod   int     `json:"sort_method"`
	Fullscreen   bool    `json:"fullscreen"`

	// Image display
	Brightness   int  `json:"brightness"`
	Contrast     int  `json:"contrast"`
	Gamma        int  `json:"gamma"`
	Statusbar    bool `json:"statusbar"`
	Transparency bool `json:"transparency"`
	Center       bool `json:"center"`
	Maxpect      bool `json:"maxpect"`
	ScaleDown    bool `json:"scale_down"`
	FixedWidth   int  `json:"fixed_width"`
	FixedZoom    int  `json:"fixed_zoom"`
	AutoRotate   bool `json:"autorotate"`
	Rotation     int  `json:"rotation"`

	// Colour management
	ColorManage    bool   `json:"color_manage"`
	DisplayProfile string `json:"display_profile"`

	// Browsing
	SlideDelay        int    `json:"slide_delay"`
	Slideshow         bool   `json:"slideshow"`
	Random            bool   `json:"random"`
	RandomReplace     bool   `json:"random_replace"`
	Shuffle           bool   `json:"shuffle"`
	DeleteHistorySize int    `json:"delete_history_size"`
	MaxFiles          int    `json:"max_files"`
	MaxPathLen        int    `json:"max_path_len"`
	Command           string `json:"command"`

	// Loading
	CacheSize      int  `json:"cache_size"`
	PreloadEnabled bool `json:"preload_enabled"`
	PreloadCount   int  `json:"preload_count"`

	Keybindings   map[string][]string `json:"keybindings"`
	Mousebindings map[string][]string `json:"mousebindings"`
	MouseSettings MouseSettings       `json:"mouse_settings"`
}

// defaultConfig returns the settings used when no config file exists.
func defaultConfig() Config {
	return Config{
		WindowWidth:       defaultWidth,
		WindowHeight:      defaultHeight,
		HelpFontSize:      20.0,
		SortMethod:        SortNatural,
		Center:            true,
		AutoRotate:        true,
		SlideDelay:        defaultSlideDelay,
		DeleteHistorySize: filelist.DefaultHistorySize,
		MaxFiles:          defaultMaxFiles,
		MaxPathLen:        defaultMaxPathLen,
		CacheSize:         16,
		PreloadEnabled:    true,
		PreloadCount:      4,
		Keybindings:       GetDefaultKeybindings(),
		Mousebindings:     GetDefaultMousebindings(),
		MouseSettings:     GetDefaultMouseSettings(),
	}
}

// validateKeybindings checks key names and reports keys bound twice.
func validateKeybindings(keybindings map[string][]string) error {
	keyToAction := make(map[string]string)
	validKeys := getValidKeyNames()

	for action, keys := range keybindings {
		for _, keyStr := range keys {
			if err := validateKeyString(keyStr, validKeys); err != nil {
				return fmt.Errorf("invalid key '%s' for action '%s': %v", keyStr, action, err)
			}
			if existingAction, exists := keyToAction[keyStr]; exists {
				return fmt.Errorf("key conflict: '%s' is bound to both '%s' and '%s'", keyStr, existingAction, action)
			}
			keyToAction[keyStr] = action
		}
	}
	return nil
}

// validateKeyString validates a single "Shift+KeyB" style key string.
func validateKeyString(keyStr string, validKeys map[string]bool) error {
	if keyStr == "" {
		return fmt.Errorf("empty key string")
	}
	parts := strings.Split(keyStr, "+")

	keyName := parts[len(parts)-1]
	if !validKeys[keyName] {
		return fmt.Errorf("unknown key: %s", keyName)
	}
	for _, modifier := range parts[:len(parts)-1] {
		if _, ok := parseModifier(modifier); !ok {
			return fmt.Errorf("unknown modifier: %s", modifier)
		}
	}
	return nil
}

// getValidKeyNames returns the set of key names accepted in keybindings.
func getValidKeyNames() map[string]bool {
	valid := make(map[string]bool)
	for name := range getKeyMapping() {
		valid[name] = true
	}
	return valid
}

func getConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "qiv.json"
	}
	return filepath.Join(homeDir, ".qiv.json")
}

func loadConfigFromPath(configPath string) ConfigLoadResult {
	return loadConfigFromFs(appFs, configPath)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func loadConfigFromFs(fs afero.Fs, configPath string) ConfigLoadResult {
	config := defaultConfig()

	result := ConfigLoadResult{
		Config:   config,
		Warnings: []string{},
		Status:   "OK",
	}

	data, err := afero.ReadFile(fs, configPath)
	if err != nil {
		// a missing config file is not an error
		result.Status = "Default"
		return result
	}

	if err := json.Unmarshal(data, &config); err != nil {
		log.Printf("Warning: Invalid config file %s, using defaults: %v", configPath, err)
		result.HasError = true
		result.Status = "Error"
		result.Warnings = append(result.Warnings, fmt.Sprintf("Invalid config file: %v", err))
		return result
	}

	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		log.Printf("Warning: %s", msg)
		result.Warnings = append(result.Warnings, msg)
		result.Status = "Warning"
	}

	if config.WindowWidth < minWidth {
		config.WindowWidth = defaultWidth
	}
	if config.WindowHeight < minHeight {
		config.WindowHeight = defaultHeight
	}
	if config.HelpFontSize <= 12.0 {
		config.HelpFontSize = 20.0
	}
	if config.SortMethod < SortNatural || config.SortMethod > SortEntryOrder {
		config.SortMethod = SortNatural
	}

	config.Brightness = clampInt(config.Brightness, -modifierRange, modifierRange)
	config.Contrast = clampInt(config.Contrast, -modifierRange, modifierRange)
	config.Gamma = clampInt(config.Gamma, -modifierRange, modifierRange)

	if config.FixedWidth < 0 {
		config.FixedWidth = 0
	}
	config.FixedZoom = clampInt(config.FixedZoom, -9, 100)

	switch config.Rotation {
	case 0, 1, 2, 3, 11, 13:
	default:
		warn("rotation %d is not one of 0-3, 11, 13", config.Rotation)
		config.Rotation = 0
	}

	if config.SlideDelay < 100 {
		config.SlideDelay = defaultSlideDelay
	}
	if config.DeleteHistorySize < 1 {
		config.DeleteHistorySize = filelist.DefaultHistorySize
	}
	if config.MaxFiles < 1 {
		config.MaxFiles = defaultMaxFiles
	}
	if config.MaxPathLen < 16 {
		config.MaxPathLen = defaultMaxPathLen
	}

	if config.CacheSize < 1 {
		config.CacheSize = 16
	} else if config.CacheSize > 64 {
		config.CacheSize = 64
	}
	if config.PreloadCount < 1 {
		config.PreloadCount = 4
	} else if config.PreloadCount > 16 {
		config.PreloadCount = 16
	}

	if config.MouseSettings.WheelSensitivity <= 0 {
		config.MouseSettings.WheelSensitivity = 1.0
	}
	if config.MouseSettings.DragThreshold < 0 {
		config.MouseSettings.DragThreshold = 5
	}

	// Fill in bindings for actions the file does not mention
	if config.Keybindings == nil {
		config.Keybindings = GetDefaultKeybindings()
	} else {
		for action, keys := range GetDefaultKeybindings() {
			if _, exists := config.Keybindings[action]; !exists {
				config.Keybindings[action] = keys
			}
		}
		if err := validateKeybindings(config.Keybindings); err != nil {
			warn("Keybinding errors: %v", err)
			config.Keybindings = GetDefaultKeybindings()
		}
	}
	if config.Mousebindings == nil {
		config.Mousebindings = GetDefaultMousebindings()
	} else {
		for action, buttons := range GetDefaultMousebindings() {
			if _, exists := config.Mousebindings[action]; !exists {
				config.Mousebindings[action] = buttons
			}
		}
	}

	result.Config = config
	return result
}

func saveConfigToPath(config Config, configPath string) error {
	return saveConfigToFs(appFs, config, configPath)
}

func saveConfigToFs(fs afero.Fs, config Config, configPath string) error {
	if config.WindowWidth < minWidth || config.WindowHeight < minHeight {
		return fmt.Errorf("not saving config with invalid window size: %dx%d",
			config.WindowWidth, config.WindowHeight)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := afero.WriteFile(fs, configPath, data, 0o644); err != nil {
		return fmt.Errorf("save config to %s: %w", configPath, err)
	}
	return nil
}
