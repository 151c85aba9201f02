package zonalstats

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// 放大后的掩膜尺寸，长边不超过MASK_DUMP_MAXDIM
func dumpSize(w, h int) (int, int) {
	scale := MASK_DUMP_SCALE
	for scale > 1 && (w*scale > MASK_DUMP_MAXDIM || h*scale > MASK_DUMP_MAXDIM) {
		scale /= 2
	}
	return w * scale, h * scale
}

// 将掩膜保存为PNG便于人工检查
func DumpMask(dir string, pos int, mask *image.Gray) (path string, err error) {
	w, h := dumpSize(mask.Bounds().Dx(), mask.Bounds().Dy())
	img := imaging.Resize(mask, w, h, imaging.NearestNeighbor)
	path = filepath.Join(dir, fmt.Sprintf(MASK_FILE_NAME, pos))
	err = imaging.Save(img, path)
	return
}
