/*
 * Copyright 2026 Hewlett Packard Enterprise Development LP
 * Other additional copyright holders may be indicated within.
 *
 * The entirety of this work is licensed under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 *
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"github.com/NearNodeFlash/dumpcard/internal/bridge"
	"github.com/NearNodeFlash/dumpcard/internal/config"
	"github.com/NearNodeFlash/dumpcard/internal/dump"
	"github.com/NearNodeFlash/dumpcard/internal/exca"
	"github.com/NearNodeFlash/dumpcard/internal/logging"
)

// Cli defines the dumpcard command line
type Cli struct {
	Debug   bool `kong:"optional,help='Enable debug'"`
	Verbose int  `kong:"optional,short='v',type='counter',help='Debug verbosity level.'"`
	Force   bool `kong:"optional,help='Write card memory even when stdout is a terminal.'"`

	Config       string        `kong:"optional,type='existingfile',env='DUMPCARD_CONFIG',help='YAML file overriding the built-in bridge configuration.'"`
	Device       string        `kong:"optional,env='DUMPCARD_DEVICE',help='Physical memory device.'"`
	RegisterBase string        `kong:"optional,env='DUMPCARD_REGISTER_BASE',help='Physical address of the bridge register page.'"`
	ApertureBase string        `kong:"optional,env='DUMPCARD_APERTURE_BASE',help='Physical address of the card aperture.'"`
	ApertureSize string        `kong:"optional,env='DUMPCARD_APERTURE_SIZE',help='Size of the card aperture in bytes.'"`
	Settle       time.Duration `kong:"optional,env='DUMPCARD_SETTLE',help='Delay between powering the card and reading it.'"`

	Space string `kong:"arg,optional,help='attr reads attribute memory; anything else reads common memory.'"`
}

func main() {
	os.Exit(run(os.Args[1:], bridge.NewDevMemController(), os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status. Card
// data is written to stdout only; everything else goes to stderr.
func run(args []string, ctrl bridge.MemoryControllerInterface, stdout, stderr io.Writer) int {
	var cli Cli

	exit := -1
	parser, err := kong.New(&cli,
		kong.Name("dumpcard"),
		kong.Description("Dump the attribute or common memory of a PC Card behind an ExCA bridge."),
		kong.Writers(stderr, stderr),
		kong.Exit(func(code int) { exit = code }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "dumpcard: %v\n", err)
		return 1
	}

	if _, err := parser.Parse(args); exit >= 0 {
		return exit
	} else if err != nil {
		parser.Errorf("%s", err)
		return 1
	}

	verbosity := cli.Verbose
	if verbosity == logging.Disabled && cli.Debug {
		verbosity = logging.Debug
	}
	logger := logging.New(stderr, verbosity)

	cfg, err := cli.configuration()
	if err != nil {
		logger.WithError(err).Error("Invalid configuration")
		return 1
	}

	if f, ok := stdout.(*os.File); ok && !cli.Force && isTerminal(f) {
		logger.Error("Refusing to write card memory to a terminal; redirect stdout or use --force")
		return 1
	}

	out := bufio.NewWriter(stdout)

	if _, err := dump.Run(context.Background(), ctrl, cfg, cli.space(), out, logger); err != nil {
		logger.WithError(err).Error("Dump failed")
		return 1
	}

	if err := out.Flush(); err != nil {
		logger.WithError(err).Error("Failed to flush card memory")
		return 1
	}

	return 0
}

func (cli *Cli) space() exca.Space {
	if cli.Space == "attr" {
		return exca.AttributeMemory
	}
	return exca.CommonMemory
}

// configuration layers the command line over the configuration file over
// the built-in defaults.
func (cli *Cli) configuration() (*config.ConfigFile, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}

	if cli.Device != "" {
		cfg.Bridge.Device = cli.Device
	}

	if cli.RegisterBase != "" {
		if cfg.Bridge.RegisterBase, err = strconv.ParseUint(cli.RegisterBase, 0, 64); err != nil {
			return nil, fmt.Errorf("register base %s: %w", cli.RegisterBase, err)
		}
	}

	if cli.ApertureBase != "" {
		if cfg.Bridge.ApertureBase, err = strconv.ParseUint(cli.ApertureBase, 0, 64); err != nil {
			return nil, fmt.Errorf("aperture base %s: %w", cli.ApertureBase, err)
		}
	}

	if cli.ApertureSize != "" {
		size, err := strconv.ParseUint(cli.ApertureSize, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("aperture size %s: %w", cli.ApertureSize, err)
		}
		cfg.Bridge.ApertureSize = int(size)
	}

	if cli.Settle != 0 {
		cfg.Window.Settle = cli.Settle
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
