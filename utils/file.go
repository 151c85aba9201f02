package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	FILE_EXT_SHP     = ".shp"
	FILE_EXT_CPG     = ".cpg"
	FILE_EXT_GPKG    = ".gpkg"
	FILE_EXT_GDB     = ".gdb"
	FILE_EXT_SQLITE  = ".sqlite"
	FILE_EXT_GEOJSON = ".geojson"
	FILE_EXT_JSON    = ".json"
)

// 可包含多个图层的容器格式
var containerExts = []string{FILE_EXT_GPKG, FILE_EXT_GDB, FILE_EXT_SQLITE}

func GetUniqSubDir(parentPath string) (path string, err error) {
	if err = os.MkdirAll(parentPath, os.ModePerm); err != nil {
		return
	}
	path = filepath.Join(parentPath, uuid.NewString())
	err = os.Mkdir(path, os.ModePerm)
	return
}

func GetFilenameWithoutExt(path string) (name string) {
	name = filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(path))
	return
}

func isContainer(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, c := range containerExts {
		if ext == c {
			return true
		}
	}
	return false
}

// 拆分"容器路径\图层"或"容器路径/图层"，未指定图层时以文件名（不含扩展名）为图层名
func SplitLayerPath(p string) (path, layer string) {
	norm := strings.TrimRight(strings.ReplaceAll(p, `\`, "/"), "/")
	p = p[:len(norm)]
	if i := strings.LastIndex(norm, "/"); i > 0 && isContainer(norm[:i]) && !isContainer(norm) {
		path, layer = p[:i], p[i+1:]
		return
	}
	path = p
	layer = GetFilenameWithoutExt(norm)
	return
}

// 读取shp旁的.cpg编码声明，没有时返回空
func ShpEncoding(shp string) (enc string) {
	if !strings.EqualFold(filepath.Ext(shp), FILE_EXT_SHP) {
		return
	}
	raw, e := os.ReadFile(strings.TrimSuffix(shp, filepath.Ext(shp)) + FILE_EXT_CPG)
	if e == nil {
		enc = strings.ToUpper(strings.TrimSpace(string(raw)))
	}
	return
}
