// Package config provides configuration management for clipr.
package config

// Default configuration values for clipr.
const (
	// DefaultMaxHistory is the number of unprotected entries kept.
	DefaultMaxHistory = 1000

	// DefaultViewMode is the list density.
	DefaultViewMode = ViewCompact

	// DefaultMaxImageSize rejects image captures larger than this.
	DefaultMaxImageSize = "50MB"

	// DefaultMaxMemorySize is the largest image kept inline in the history.
	// Larger captures are written to the images directory.
	DefaultMaxMemorySize = "5MB"

	// DefaultMaxPreviewSize is the largest image file decoded for preview.
	DefaultMaxPreviewSize = "10MB"

	// DefaultCacheSize is the number of decoded previews kept.
	DefaultCacheSize = 20

	// DefaultPreviewWidth and DefaultPreviewHeight bound the preview pane in cells.
	DefaultPreviewWidth  = 80
	DefaultPreviewHeight = 40

	// DefaultStorageBackend selects the snapshot store.
	DefaultStorageBackend = "file"

	// DefaultClipboardBackend selects the clipboard writer.
	DefaultClipboardBackend = "auto"
)

// View modes.
const (
	ViewCompact     = "compact"
	ViewComfortable = "comfortable"
)

const defaultConfigTemplate = `# clipr clipboard history configuration

general:
  # Number of unpinned, unregistered entries to keep (negative for unlimited)
  max_history: %d
  # Quit after copying an entry
  exit_on_select: true
  # List density: compact or comfortable
  view_mode: %s
  # Show dimensions and size under image previews
  show_preview_metadata: true

images:
  # Image captures larger than this are rejected
  max_size: %s
  # Larger captures are stored as files under the data directory
  max_memory_size: %s
  # Image files larger than this are not previewed
  max_preview_size: %s
  # Number of decoded previews kept in memory
  cache_size: %d
  # Preview pane size in terminal cells
  preview_width: %d
  preview_height: %d

storage:
  # Snapshot backend: file or badger
  backend: %s
  # Data directory (empty means use default: $XDG_DATA_HOME/clipr)
  path: ""

clipboard:
  # Clipboard writer: auto, wayland or system
  backend: %s

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/clipr/clipr.log)
  path: ""
  # Log rotation settings
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  # Per-component log levels
  components:
    ledger: info
    preview: info
    snapshot: info
    watcher: warn
    tui: info

# Registers that always hold the same content. Keys are one of 0-9, a-z, A-Z.
# permanent_registers:
#   - key: e
#     content: "me@example.com"
#     name: email
#   - key: k
#     file: ~/.ssh/id_ed25519.pub
#     mime_type: text/plain
#     description: ssh public key
permanent_registers: []
`
