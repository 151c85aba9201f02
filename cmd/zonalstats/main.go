package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	zs "github.com/wgdzlh/zonalstats"
	"github.com/wgdzlh/zonalstats/conf"
	"github.com/wgdzlh/zonalstats/gdalsrc"
	"github.com/wgdzlh/zonalstats/log"
	"github.com/wgdzlh/zonalstats/report"
	"github.com/wgdzlh/zonalstats/utils"

	"go.uber.org/zap"
)

// 由矢量编码与烧录方式组装协作者
type providerFunc func(encoding, burner string) zs.Provider

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, gdalsrc.NewProvider))
}

func run(args []string, stdout, stderr io.Writer, newProvider providerFunc) int {
	fatal := func(format string, a ...interface{}) int {
		fmt.Fprintf(stderr, "[ ERROR ] "+format+"\n", a...)
		return 1
	}

	fl := flag.NewFlagSet("zonalstats", flag.ContinueOnError)
	fl.SetOutput(stderr)
	fl.Usage = func() {
		fmt.Fprintln(stderr, `Usage: zonalstats [flags] <polygon-path[\layer]> <raster-path>`)
		fl.PrintDefaults()
	}
	confFile := fl.String("config", "", "YAML config file")
	envFile := fl.String("env", ".env", "dotenv file, ignored when absent")
	workers := fl.Int("n", 0, "number of parallel workers")
	policy := fl.String("policy", "", "per-feature error policy: abort|skip")
	burner := fl.String("burner", "", "mask burner: scanline|gdal")
	format := fl.String("f", "", "output format: json|csv|xlsx")
	output := fl.String("o", "", "output file, stdout when empty")
	maskDir := fl.String("mask-dir", "", "dump feature masks as PNG under this directory")
	level := fl.String("log-level", "", "log level: debug|info|warn|error, logging off when empty")
	logFile := fl.String("log-file", "", "log file, stderr when empty")
	encoding := fl.String("encoding", "", "vector attribute encoding: UTF-8|GBK, .cpg or UTF-8 when empty")
	if err := fl.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return fatal("%v", err)
	}

	if fl.NArg() != 2 {
		return fatal(`you must supply two arguments: "path/to/polygon" "path/to/raster"`)
	}
	if err := conf.LoadDotEnv(*envFile); err != nil {
		return fatal("%v", err)
	}
	c, err := conf.Load(*confFile)
	if err != nil {
		return fatal("%v", err)
	}
	fl.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			c.Workers = *workers
		case "policy":
			c.Policy = *policy
		case "burner":
			c.Burner = *burner
		case "f":
			c.OutputFormat = *format
		case "o":
			c.OutputPath = *output
		case "mask-dir":
			c.MaskDir = *maskDir
		case "log-level":
			c.LogLevel = *level
		case "log-file":
			c.LogFile = *logFile
		case "encoding":
			c.VectorEncoding = *encoding
		}
	})
	if err = setupLog(c); err != nil {
		return fatal("%v", err)
	}
	defer log.Sync()
	opts, err := c.Options()
	if err != nil {
		return fatal("%v", err)
	}

	polygonPath, layer := utils.SplitLayerPath(fl.Arg(0))
	rasterPath := fl.Arg(1)
	log.Info("zonalstats start", zap.String("polygon", polygonPath), zap.String("layer", layer),
		zap.String("raster", rasterPath), zap.Int("workers", opts.Workers))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tb := zs.NewZonalToolbox(newProvider(c.VectorEncoding, c.Burner), opts)
	res, err := tb.LoopZonalStats(ctx, polygonPath, layer, rasterPath)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fatal("interrupted")
		}
		return fatal("%v", err)
	}
	for _, w := range res.Warnings() {
		fmt.Fprintf(stderr, "[ WARNING ] %s\n", w)
	}
	for _, pos := range res.Positions() {
		if fs := res[pos]; fs.Err != nil {
			fmt.Fprintf(stderr, "[ WARNING ] feature %d skipped: %v\n", pos, fs.Err)
		}
	}

	if c.OutputPath == "" {
		err = report.Write(stdout, res, c.OutputFormat)
	} else {
		err = report.WriteFile(c.OutputPath, res, c.OutputFormat)
	}
	if err != nil {
		return fatal("write result: %v", err)
	}
	return 0
}

// 未配置级别与文件时关闭日志，stderr只保留诊断行
func setupLog(c conf.Config) error {
	if c.LogLevel == "" && c.LogFile == "" {
		log.Disable()
		return nil
	}
	out := c.LogFile
	if out == "" {
		out = "stderr"
	}
	if err := log.SetOutput(out); err != nil {
		return err
	}
	if c.LogLevel == "" {
		return nil
	}
	return log.SetLevel(c.LogLevel)
}
