package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slatecanvas/slate/internal/ui"
	"github.com/slatecanvas/slate/pkg/storage"
)

var (
	// Global flags
	verbose bool
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "slate",
	Short: "Slate - infinite canvas whiteboard",
	Long: `Slate is an infinite canvas whiteboard with text, image, and chat
blocks, direct-manipulation editing, and full undo/redo.

Examples:
  slate ui                             # Open the whiteboard window
  slate boards list                    # List stored boards
  slate export <board-id> -o b.png     # Render a board to PNG
  slate import notes.slate             # Import a .slate text file`,
	Version: "0.1.0",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (defaults to the per-user location)")
}

// openDB opens the database named by --db or the per-user default.
func openDB() (*storage.DB, error) {
	path := dbPath
	if path == "" {
		var err error
		path, err = ui.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return storage.Open(path)
}

func logf(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
