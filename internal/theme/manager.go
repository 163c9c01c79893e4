// internal/theme/manager.go
package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bethropolis/scatter/internal/config"
	"github.com/bethropolis/scatter/internal/logger"
	"github.com/gdamore/tcell/v2"
)

// Manager holds loaded themes and manages the active theme.
type Manager struct {
	themes       map[string]*Theme // Map theme name (lowercase) -> Theme object
	activeTheme  *Theme
	themesDir    string
	configDir    string // Store the base config directory
	defaultTheme string // Path to the default theme file
	mutex        sync.RWMutex
	loadError    error // Store error from initial load
}

// NewManager creates and initializes a theme manager rooted at the
// platform-default config directory.
func NewManager() *Manager {
	return NewManagerWithConfigDir("")
}

// NewManagerWithConfigDir is like NewManager, but resolves the themes
// directory and default theme file under configDirOverride instead of
// the platform default when set (spec §6's "--config-dir <path>" flag
// applies to themes the same way it applies to the TOML config file).
func NewManagerWithConfigDir(configDirOverride string) *Manager {
	mgr := &Manager{
		themes: make(map[string]*Theme),
	}

	configDir := configDirOverride
	if configDir == "" {
		if d, err := os.UserConfigDir(); err == nil {
			configDir = filepath.Join(d, config.ConfigDirName)
		} else {
			logger.Warnf("Could not find user config dir: %v. Themes cannot be loaded from default location.", err)
		}
	}
	if configDir != "" {
		mgr.configDir = configDir
		mgr.themesDir = filepath.Join(mgr.configDir, config.ThemesDirName)
		mgr.defaultTheme = filepath.Join(mgr.configDir, config.DefaultThemeFileName) // Default theme at config root
	}

	// 1. Load built-in themes first (provides fallbacks)
	mgr.loadBuiltinThemes()

	var loadDirErr error
	// 2. Load themes from directory (if found)
	if mgr.themesDir != "" {
		loadDirErr = mgr.LoadThemesFromDir() // Load custom *.toml files
		if loadDirErr != nil {
			logger.Errorf("Error loading themes from directory '%s': %v", mgr.themesDir, loadDirErr)
			// Continue, but custom themes might be missing
		}
	}

	// 3. Attempt to load the specific default user theme file (now from config root)
	var userDefaultTheme *Theme // Store if loaded successfully
	if mgr.configDir != "" {
		if _, err := os.Stat(mgr.defaultTheme); err == nil {
			// File exists, try loading it
			logger.Infof("Found default user theme file: %s", mgr.defaultTheme)
			theme, loadErr := LoadThemeFromFile(mgr.defaultTheme)
			if loadErr != nil {
				logger.Warnf("Failed to load default theme file '%s': %v", mgr.defaultTheme, loadErr)
				// Store the error if needed, but don't overwrite loadDirErr yet
				if mgr.loadError == nil {
					mgr.loadError = loadErr
				}
			} else {
				// Successfully loaded theme.toml
				userDefaultTheme = theme // Mark this as the preferred theme
				// Add/overwrite it in the map, ensuring priority
				themeNameLower := stringsToLower(theme.Name)
				if existing, ok := mgr.themes[themeNameLower]; ok {
					logger.Infof("Default theme file ('%s') defines theme '%s', overriding previous definition from '%s'",
						mgr.defaultTheme, theme.Name, existing.Name)
				} else {
					logger.Infof("Loaded theme '%s' from default file '%s'", theme.Name, mgr.defaultTheme)
				}
				mgr.themes[themeNameLower] = theme
			}
		} else if !os.IsNotExist(err) {
			// Error stating the file, other than not existing
			logger.Warnf("Error checking for default theme file '%s': %v", mgr.defaultTheme, err)
			if mgr.loadError == nil {
				mgr.loadError = err
			}
		} else {
			logger.Debugf("Default user theme file not found: %s", mgr.defaultTheme)
		}
	}
	// Assign final overall load error if one occurred
	if loadDirErr != nil && mgr.loadError == nil {
		mgr.loadError = loadDirErr
	}

	// 4. Set initial active theme with priority
	var initialThemeSet bool
	// Priority 1: Use the theme loaded from theme.toml if successful
	if userDefaultTheme != nil {
		mgr.activeTheme = userDefaultTheme
		initialThemeSet = true
		logger.Infof("Setting active theme from default user file: %s", userDefaultTheme.Name)
	}

	// Priority 2: Fallback to preferred built-in (config.DefaultPreviewTheme) if not set yet
	if !initialThemeSet {
		preferredBuiltInName := stringsToLower(config.DefaultPreviewTheme)
		if theme, ok := mgr.themes[preferredBuiltInName]; ok {
			mgr.activeTheme = theme
			initialThemeSet = true
			logger.Infof("Setting active theme to preferred built-in: %s", theme.Name)
		}
	}

	// Priority 3: Fallback to the first theme found if still not set
	if !initialThemeSet && len(mgr.themes) > 0 {
		for _, t := range mgr.themes { // Iteration order isn't guaranteed, but it's a fallback
			mgr.activeTheme = t
			initialThemeSet = true
			logger.Infof("Setting active theme to first available: %s", t.Name)
			break
		}
	}

	// Priority 4: Failsafe if absolutely no themes loaded
	if !initialThemeSet {
		logger.Errorf("No themes loaded successfully, using failsafe theme!")
		mgr.activeTheme = &Theme{
			Name: "Failsafe",
			Styles: map[string]tcell.Style{
				"Default": tcell.StyleDefault,
			},
		}
	}

	// Ensure global CurrentTheme reflects the manager's choice (for any code still using it)
	SetCurrentTheme(mgr.activeTheme) // Updates the global variable

	return mgr
}

// loadBuiltinThemes adds themes compiled into the binary.
func (m *Manager) loadBuiltinThemes() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Add our ScatterDark theme (ensure init() has run for it)
	themeNameLower := stringsToLower(ScatterDark.Name)
	m.themes[themeNameLower] = &ScatterDark // Use lowercase name as key
	logger.Debugf("Loaded built-in theme: %s", ScatterDark.Name)
}

// LoadThemesFromDir scans the themes directory and loads .toml files.
func (m *Manager) LoadThemesFromDir() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.themesDir == "" {
		return errors.New("theme directory path is not set")
	}

	// Ensure directory exists, CREATE if not found
	if _, err := os.Stat(m.themesDir); os.IsNotExist(err) {
		logger.Infof("Theme directory '%s' does not exist. Creating directory.", m.themesDir)
		if err := os.MkdirAll(m.themesDir, 0755); err != nil { // Use MkdirAll
			return fmt.Errorf("failed to create theme dir '%s': %w", m.themesDir, err)
		}
		return nil // Directory created, no themes to load yet
	} else if err != nil {
		// Error stating the directory other than not existing
		return fmt.Errorf("error checking theme directory '%s': %w", m.themesDir, err)
	}

	logger.Infof("Loading themes from: %s", m.themesDir)
	files, err := os.ReadDir(m.themesDir)
	if err != nil {
		return fmt.Errorf("failed to read theme directory '%s': %w", m.themesDir, err)
	}

	loadedCount := 0
	for _, file := range files {
		fileNameLower := stringsToLower(file.Name())
		// No longer skip theme.toml - we treat all .toml files as themes
		if !file.IsDir() && strings.HasSuffix(fileNameLower, ".toml") {
			filePath := filepath.Join(m.themesDir, file.Name())
			theme, err := LoadThemeFromFile(filePath) // Use the loader
			if err != nil {
				logger.Warnf("Failed to load theme from '%s': %v", filePath, err)
				continue // Skip problematic file
			}

			themeNameLower := stringsToLower(theme.Name)
			if existing, ok := m.themes[themeNameLower]; ok {
				// Don't warn if overriding built-in, only if overriding another file
				// This check is tricky. For now, let later loads win.
				logger.Debugf("Theme '%s' from '%s' potentially overrides existing theme '%s'", theme.Name, filePath, existing.Name)
			}
			m.themes[themeNameLower] = theme
			loadedCount++
		}
	}
	logger.Infof("Loaded %d custom themes from directory scan.", loadedCount)
	return nil
}

// Current returns the currently active theme.
func (m *Manager) Current() *Theme {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.activeTheme == nil {
		// Should have been initialized, but provide ultimate fallback
		return &Theme{Name: "NilFallback", Styles: map[string]tcell.Style{"Default": tcell.StyleDefault}}
	}
	return m.activeTheme
}

// SetTheme sets the active theme by name (case-insensitive).
func (m *Manager) SetTheme(name string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	nameLower := stringsToLower(name)
	theme, ok := m.themes[nameLower]
	if !ok {
		return fmt.Errorf("theme '%s' not found", name)
	}

	// Only update if actually changed. Unlike an editor's interactive
	// ":theme" command, selecting a theme from the preview.theme config
	// value at startup does not write a theme.toml file; the manager
	// never writes theme files.
	if m.activeTheme != theme {
		m.activeTheme = theme
		logger.Infof("Active theme set to: %s", theme.Name)
		SetCurrentTheme(theme)
	} else {
		logger.Debugf("Theme '%s' already active, no change needed", name)
	}

	return nil
}

