// Package conf 运行配置：默认值 <- YAML文件 <- .env/环境变量 <- 命令行参数
package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	zs "github.com/wgdzlh/zonalstats"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ENV_PREFIX = "ZONAL_"

	ENV_WORKERS         = ENV_PREFIX + "WORKERS"
	ENV_POLICY          = ENV_PREFIX + "POLICY"
	ENV_BURNER          = ENV_PREFIX + "BURNER"
	ENV_OUTPUT_FORMAT   = ENV_PREFIX + "OUTPUT_FORMAT"
	ENV_OUTPUT          = ENV_PREFIX + "OUTPUT"
	ENV_MASK_DIR        = ENV_PREFIX + "MASK_DIR"
	ENV_LOG_LEVEL       = ENV_PREFIX + "LOG_LEVEL"
	ENV_VECTOR_ENCODING = ENV_PREFIX + "VECTOR_ENCODING"
	ENV_LOG_FILE        = ENV_PREFIX + "LOG_FILE"
)

type Config struct {
	Workers      int    `yaml:"workers"`
	Policy       string `yaml:"policy"`
	Burner       string `yaml:"burner"`
	OutputFormat string `yaml:"output_format"`
	OutputPath   string `yaml:"output"`
	MaskDir      string `yaml:"mask_dir"`
	// 为空时关闭运行日志，命令行只输出[ ERROR ]/[ WARNING ]诊断
	LogLevel string `yaml:"log_level"`
	// 为空时写stderr
	LogFile string `yaml:"log_file"`
	// 为空时shp读取.cpg声明，其余按UTF-8处理
	VectorEncoding string `yaml:"vector_encoding"`
}

func Default() Config {
	return Config{
		Workers: zs.DEFAULT_WORKERS,
		Policy:  "abort",
		Burner:  zs.BURNER_SCANLINE,
	}
}

// 依次叠加YAML文件（path为空时跳过）与环境变量
func Load(path string) (c Config, err error) {
	c = Default()
	if path != "" {
		if err = c.mergeFile(path); err != nil {
			return
		}
	}
	err = c.mergeEnv(os.LookupEnv)
	return
}

// 加载.env文件到进程环境，文件不存在时忽略
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		ENV_POLICY:          &c.Policy,
		ENV_BURNER:          &c.Burner,
		ENV_OUTPUT_FORMAT:   &c.OutputFormat,
		ENV_OUTPUT:          &c.OutputPath,
		ENV_MASK_DIR:        &c.MaskDir,
		ENV_LOG_LEVEL:       &c.LogLevel,
		ENV_LOG_FILE:        &c.LogFile,
		ENV_VECTOR_ENCODING: &c.VectorEncoding,
	}
	for k, p := range strs {
		if v, ok := lookup(k); ok {
			*p = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup(ENV_WORKERS); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", ENV_WORKERS, err)
		}
		c.Workers = n
	}
	return nil
}

func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if _, err := zs.ParseErrorPolicy(c.Policy); err != nil {
		return err
	}
	switch c.Burner {
	case zs.BURNER_SCANLINE, zs.BURNER_GDAL:
	default:
		return fmt.Errorf("unknown burner: %q", c.Burner)
	}
	switch strings.ToLower(c.OutputFormat) {
	case "", "json", "csv", "xlsx":
	default:
		return fmt.Errorf("unknown output format: %q", c.OutputFormat)
	}
	return nil
}

// 转换为工具箱选项
func (c Config) Options() (opts zs.Options, err error) {
	if err = c.Validate(); err != nil {
		return
	}
	opts.Workers = c.Workers
	opts.MaskDir = c.MaskDir
	opts.Policy, err = zs.ParseErrorPolicy(c.Policy)
	return
}
