// Copyright (C) 2026 the starrocks-frontend authors.
// See LICENSE for copying information.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/common/cfgstruct"
	"storj.io/common/fpath"
	"storj.io/common/process"

	"github.com/dorsegal/starrocks/frontend"
	"github.com/dorsegal/starrocks/frontend/consistency"
)

var (
	rootCmd = &cobra.Command{
		Use:   "frontend",
		Short: "Metadata controller",
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the metadata controller",
		RunE:  cmdRun,
	}
	setupCmd = &cobra.Command{
		Use:         "setup",
		Short:       "Create config files",
		RunE:        cmdSetup,
		Annotations: map[string]string{"type": "setup"},
	}

	confDir string

	runCfg   frontend.Config
	setupCfg frontend.Config
)

func cmdSetup(cmd *cobra.Command, args []string) (err error) {
	setupDir, err := filepath.Abs(confDir)
	if err != nil {
		return err
	}

	valid, _ := fpath.IsValidSetupDir(setupDir)
	if !valid {
		return fmt.Errorf("frontend configuration already exists (%v)", setupDir)
	}

	err = os.MkdirAll(setupDir, 0700)
	if err != nil {
		return err
	}

	return process.SaveConfig(cmd, filepath.Join(setupDir, "config.yaml"))
}

func cmdRun(cmd *cobra.Command, args []string) (err error) {
	ctx, _ := process.Ctx(cmd)
	log := zap.L()

	// The node task transport and the replication journal are provided by
	// the surrounding deployment; running standalone they are stubbed out.
	peer, err := frontend.New(log, consistency.NullDispatcher{}, consistency.NullJournal{}, runCfg)
	if err != nil {
		return errs.New("error creating frontend peer: %+v", err)
	}

	runErr := peer.Run(ctx)
	closeErr := peer.Close()
	return errs.Combine(runErr, closeErr)
}

func init() {
	defaultConfDir := fpath.ApplicationDir("starrocks", "frontend")
	cfgstruct.SetupFlag(zap.L(), rootCmd, &confDir, "config-dir", defaultConfDir, "main directory for frontend configuration")
	defaults := cfgstruct.DefaultsFlag(rootCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(setupCmd)
	process.Bind(runCmd, &runCfg, defaults, cfgstruct.ConfDir(confDir))
	process.Bind(setupCmd, &setupCfg, defaults, cfgstruct.ConfDir(confDir), cfgstruct.SetupMode())
}

func main() {
	logger, _, _ := process.NewLogger("frontend")
	zap.ReplaceGlobals(logger)

	process.Exec(rootCmd)
}
