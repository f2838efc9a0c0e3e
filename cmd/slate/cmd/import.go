package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slatecanvas/slate/pkg/board"
	"github.com/slatecanvas/slate/pkg/boardfile"
	"github.com/slatecanvas/slate/pkg/storage"
)

var importName string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a .slate or .json file as a new board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		var (
			meta   boardfile.BoardMeta
			blocks []board.Block
		)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			meta, blocks, err = boardfile.ImportJSON(f)
			if err != nil {
				return err
			}
		default:
			parser, err := boardfile.NewParser()
			if err != nil {
				return err
			}
			parsed, err := parser.ParseFile(path)
			if err != nil {
				return err
			}
			meta.Name = parsed.Header.Name.GetValue()
			if vp := parsed.Header.Viewport; vp != nil {
				meta.ViewportX, meta.ViewportY, meta.ViewportZoom = vp.X, vp.Y, vp.Zoom
			}
			blocks = parsed.ToBlocks()
		}

		name := importName
		if name == "" {
			name = meta.Name
		}
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		repo := storage.NewBoardRepo(db)
		b, err := repo.Create(name)
		if err != nil {
			return err
		}
		if err := repo.ReplaceBlocks(b.ID, blocks); err != nil {
			return err
		}
		if meta.ViewportZoom != 0 {
			if err := repo.SaveViewport(b.ID, meta.ViewportX, meta.ViewportY, meta.ViewportZoom); err != nil {
				return err
			}
		}
		logf("imported %d blocks into %q", len(blocks), name)
		fmt.Println(b.ID)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importName, "board", "", "name for the new board (defaults to the file header)")
	rootCmd.AddCommand(importCmd)
}
