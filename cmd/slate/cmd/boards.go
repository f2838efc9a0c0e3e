package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slatecanvas/slate/pkg/storage"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "Manage stored boards",
}

var boardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List boards, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		repo := storage.NewBoardRepo(db)
		boards, err := repo.List()
		if err != nil {
			return err
		}
		if len(boards) == 0 {
			fmt.Println("no boards")
			return nil
		}
		for _, b := range boards {
			blocks, err := repo.LoadBlocks(b.ID)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %-24s %3d blocks  updated %s\n",
				b.ID, b.Name, len(blocks), b.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var boardsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		b, err := storage.NewBoardRepo(db).Create(args[0])
		if err != nil {
			return err
		}
		fmt.Println(b.ID)
		return nil
	},
}

var boardsDeleteCmd = &cobra.Command{
	Use:   "delete <board-id>",
	Short: "Delete a board and its blocks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		repo := storage.NewBoardRepo(db)
		if _, err := repo.Get(args[0]); err != nil {
			return fmt.Errorf("board %s: %w", args[0], err)
		}
		if err := repo.Delete(args[0]); err != nil {
			return err
		}
		// Orphaned images are reclaimed here rather than at delete time.
		if n, err := storage.NewImageRepo(db).Sweep(); err == nil && n > 0 {
			logf("swept %d orphaned images", n)
		}
		fmt.Println("deleted", args[0])
		return nil
	},
}

func init() {
	boardsCmd.AddCommand(boardsListCmd, boardsCreateCmd, boardsDeleteCmd)
	rootCmd.AddCommand(boardsCmd)
}
