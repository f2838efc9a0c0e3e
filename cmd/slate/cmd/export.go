package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slatecanvas/slate/pkg/boardfile"
	"github.com/slatecanvas/slate/pkg/storage"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <board-id>",
	Short: "Export a board to png, json, or slate format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		repo := storage.NewBoardRepo(db)
		b, err := repo.Get(args[0])
		if err != nil {
			return fmt.Errorf("board %s: %w", args[0], err)
		}
		blocks, err := repo.LoadBlocks(b.ID)
		if err != nil {
			return err
		}
		meta := boardfile.BoardMeta{
			Name:         b.Name,
			ViewportX:    b.ViewportX,
			ViewportY:    b.ViewportY,
			ViewportZoom: b.ViewportZoom,
		}

		format := strings.ToLower(exportFormat)
		out := exportOut
		if out == "" {
			out = sanitizeName(b.Name) + "." + format
		}

		switch format {
		case "png":
			if err := boardfile.ExportPNG(out, blocks); err != nil {
				return err
			}
		case "json":
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := boardfile.ExportJSON(f, meta, blocks); err != nil {
				return err
			}
		case "slate":
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := boardfile.Write(f, meta, blocks); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown format %q (png, json, slate)", exportFormat)
		}
		logf("exported %d blocks from %q", len(blocks), b.Name)
		fmt.Println(out)
		return nil
	},
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "board"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, name)
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "png", "output format: png, json, or slate")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (defaults to the board name)")
	rootCmd.AddCommand(exportCmd)
}
