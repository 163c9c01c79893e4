package config

import "time"

// Base application details
const AppName = "scatter"
const ConfigDirName = "scatter"
const ThemesDirName = "themes"
const DefaultThemeFileName = "theme.toml"   // Active theme file
const DefaultConfigFileName = "config.toml" // Main config file
const DefaultLogFileName = "scatter.log"

// UI Layout
const StatusBarHeight = 1

// Status Bar
const MessageTimeout = 4 * time.Second

// editor_open defaults (spec §6 Config file): %file/%line are substituted
// into Command before exec.
const DefaultEditorCommand = "$EDITOR %file:%line"
const DefaultExitAfterOpen = false

// search defaults
const DefaultDisablePrepopulatedFields = false
const DefaultInterpretEscapeSequences = false

// preview defaults
const DefaultWrapText = false
const DefaultPreviewTheme = "scatter dark"

// style defaults
const DefaultForceTrueColor = false
