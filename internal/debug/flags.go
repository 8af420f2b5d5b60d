// Copyright 2025 The aztec-verifier Authors
// This file is part of the aztec-verifier library.
//
// The aztec-verifier library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The aztec-verifier library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the aztec-verifier library. If not, see <http://www.gnu.org/licenses/>.

// Package debug configures the logging of the aztec-verify command.
package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aztec-verifier/aztec-verifier/internal/flags"
	"github.com/aztec-verifier/aztec-verifier/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: flags.LoggingCategory,
	}
	LogFormatFlag = &cli.StringFlag{
		Name:     "log.format",
		Usage:    "Log format to use (json|logfmt|terminal)",
		Category: flags.LoggingCategory,
	}
	LogFileFlag = &cli.StringFlag{
		Name:     "log.file",
		Usage:    "Write logs to a file",
		Category: flags.LoggingCategory,
	}
	LogRotateFlag = &cli.BoolFlag{
		Name:     "log.rotate",
		Usage:    "Enables log file rotation",
		Category: flags.LoggingCategory,
	}
	LogMaxSizeMBsFlag = &cli.IntFlag{
		Name:     "log.maxsize",
		Usage:    "Maximum size in MBs of a single log file",
		Value:    100,
		Category: flags.LoggingCategory,
	}
	LogMaxBackupsFlag = &cli.IntFlag{
		Name:     "log.maxbackups",
		Usage:    "Maximum number of log files to retain",
		Value:    10,
		Category: flags.LoggingCategory,
	}
	LogMaxAgeFlag = &cli.IntFlag{
		Name:     "log.maxage",
		Usage:    "Maximum number of days to retain a log file",
		Value:    30,
		Category: flags.LoggingCategory,
	}
	LogCompressFlag = &cli.BoolFlag{
		Name:     "log.compress",
		Usage:    "Compress the log files",
		Category: flags.LoggingCategory,
	}
)

// Flags holds all command-line flags required for logging.
var Flags = []cli.Flag{
	VerbosityFlag,
	LogFormatFlag,
	LogFileFlag,
	LogRotateFlag,
	LogMaxSizeMBsFlag,
	LogMaxBackupsFlag,
	LogMaxAgeFlag,
	LogCompressFlag,
}

var logOutputFile io.WriteCloser

// Setup initializes logging based on the CLI flags. It should be called as
// early as possible in the program.
// Setup 根据命令行标志初始化日志。
func Setup(ctx *cli.Context) error {
	file, err := openLogFile(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize file logger: %w", err)
	}
	logOutputFile = file

	format := ctx.String(LogFormatFlag.Name)
	useColor := file == nil && (format == "" || format == "terminal") &&
		StderrIsTerminal() && os.Getenv("TERM") != "dumb"

	stderr := io.Writer(os.Stderr)
	if useColor {
		stderr = colorable.NewColorableStderr()
	}
	output := stderr
	if file != nil {
		output = io.MultiWriter(stderr, file)
	}
	handler, err := newHandler(format, output, log.FromLegacyLevel(ctx.Int(VerbosityFlag.Name)), useColor)
	if err != nil {
		return err
	}
	log.SetDefault(log.NewLogger(handler))

	if file != nil {
		log.Debug("Logging to file", "path", ctx.String(LogFileFlag.Name), "rotate", ctx.Bool(LogRotateFlag.Name))
	}
	return nil
}

// openLogFile opens the --log.file destination, wrapped in a rotating
// writer if --log.rotate is set. It returns nil without a log file.
func openLogFile(ctx *cli.Context) (io.WriteCloser, error) {
	path := ctx.String(LogFileFlag.Name)
	if path == "" {
		if ctx.Bool(LogRotateFlag.Name) {
			return nil, fmt.Errorf("--%s requires --%s", LogRotateFlag.Name, LogFileFlag.Name)
		}
		return nil, nil
	}
	if err := validateLogLocation(filepath.Dir(path)); err != nil {
		return nil, err
	}
	if !ctx.Bool(LogRotateFlag.Name) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    ctx.Int(LogMaxSizeMBsFlag.Name),
		MaxBackups: ctx.Int(LogMaxBackupsFlag.Name),
		MaxAge:     ctx.Int(LogMaxAgeFlag.Name),
		Compress:   ctx.Bool(LogCompressFlag.Name),
	}, nil
}

func newHandler(format string, w io.Writer, level slog.Level, useColor bool) (slog.Handler, error) {
	switch format {
	case "json":
		return log.JSONHandlerWithLevel(w, level), nil
	case "logfmt":
		return log.LogfmtHandlerWithLevel(w, level), nil
	case "", "terminal":
		return log.NewTerminalHandlerWithLevel(w, level, useColor), nil
	default:
		return nil, fmt.Errorf("unknown log format: %v", format)
	}
}

// Exit closes the log file, if any.
func Exit() {
	if logOutputFile != nil {
		logOutputFile.Close()
	}
}

// StderrIsTerminal reports whether stderr is attached to a terminal.
func StderrIsTerminal() bool {
	return isTerminal(os.Stderr.Fd())
}

// StdinIsTerminal reports whether stdin is attached to a terminal.
func StdinIsTerminal() bool {
	return isTerminal(os.Stdin.Fd())
}

// StdoutIsTerminal reports whether stdout is attached to a terminal.
func StdoutIsTerminal() bool {
	return isTerminal(os.Stdout.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func validateLogLocation(path string) error {
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return fmt.Errorf("error creating the directory: %w", err)
	}
	f, err := os.CreateTemp(path, ".aztec-verify-*")
	if err != nil {
		return fmt.Errorf("log directory not writable: %w", err)
	}
	f.Close()
	return os.Remove(f.Name())
}
