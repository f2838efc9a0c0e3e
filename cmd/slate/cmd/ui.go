package cmd

import (
	"github.com/spf13/cobra"

	appui "github.com/slatecanvas/slate/internal/ui"
	"github.com/slatecanvas/slate/pkg/ai"
)

var uiBoardID string

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the whiteboard window",
	Long: `Open the interactive whiteboard. Without --board the most recently
updated board opens; a fresh database gets an empty "Untitled" board.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}

		state := appui.NewState()
		config := appui.DefaultConfig()

		cfgPath, err := appui.DefaultConfigPath()
		if err == nil {
			if cfg, err := appui.LoadConfig(cfgPath); err == nil {
				config = cfg
				state.SetDarkMode(cfg.Theme == "dark")
			}
			if stop, err := appui.WatchConfig(cfgPath, func(cfg appui.Config) {
				state.SetDarkMode(cfg.Theme == "dark")
				state.Logf("config reloaded from %s", cfgPath)
			}); err == nil {
				defer stop()
			}
		}

		var client *ai.Client
		if config.AIBaseURL != "" {
			client = ai.NewClient(config.AIBaseURL, config.AIAPIKey)
		}

		return appui.Run(appui.Options{
			State:   state,
			DB:      db,
			BoardID: uiBoardID,
			AI:      client,
		})
	},
}

func init() {
	uiCmd.Flags().StringVar(&uiBoardID, "board", "", "board id to open")
	rootCmd.AddCommand(uiCmd)
}
