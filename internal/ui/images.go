package ui

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"gioui.org/op/paint"

	"github.com/slatecanvas/slate/pkg/storage"
)

// imageCache lazily decodes stored images into paint ops. A ref that
// fails to load is cached as absent so the canvas does not retry every
// frame.
type imageCache struct {
	repo *storage.ImageRepo
	ops  map[string]paint.ImageOp
	bad  map[string]bool
}

func newImageCache(repo *storage.ImageRepo) *imageCache {
	return &imageCache{
		repo: repo,
		ops:  make(map[string]paint.ImageOp),
		bad:  make(map[string]bool),
	}
}

// decodeImageConfig reads the image dimensions without a full decode.
func decodeImageConfig(data []byte) (image.Config, string, error) {
	return image.DecodeConfig(bytes.NewReader(data))
}

func (c *imageCache) Get(ref string) (paint.ImageOp, bool) {
	if ref == "" || c.bad[ref] {
		return paint.ImageOp{}, false
	}
	if op, ok := c.ops[ref]; ok {
		return op, true
	}
	if c.repo == nil {
		return paint.ImageOp{}, false
	}
	data, _, err := c.repo.Get(ref)
	if err != nil {
		c.bad[ref] = true
		return paint.ImageOp{}, false
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		c.bad[ref] = true
		return paint.ImageOp{}, false
	}
	op := paint.NewImageOp(img)
	c.ops[ref] = op
	return op, true
}
