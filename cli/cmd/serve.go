// Copyright 2022 CFC4N <cfc4n.cs@gmail.com>. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	adminhttp "github.com/bobertjmurphy/zeek/cli/http"
	"github.com/bobertjmurphy/zeek/internal/builder"
	"github.com/bobertjmurphy/zeek/internal/config"
	"github.com/bobertjmurphy/zeek/internal/factory"
	"github.com/bobertjmurphy/zeek/internal/logger"
	"github.com/bobertjmurphy/zeek/pkg/logging"
)

// connSchema is the fixed field layout of the demo filter serve starts:
// Zeek's own conn.log columns, flattened.
var connSchema = []logging.Field{
	{Name: "ts", Type: logging.TypeTime},
	{Name: "uid", Type: logging.TypeString},
	{Name: "orig_h", Type: logging.TypeAddr},
	{Name: "orig_p", Type: logging.TypePort},
	{Name: "resp_h", Type: logging.TypeAddr},
	{Name: "resp_p", Type: logging.TypePort},
	{Name: "proto", Type: logging.TypeEnum},
	{Name: "duration", Type: logging.TypeInterval, Optional: true},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start one writer filter and keep it running",
	Long: `serve starts the admin HTTP surface, constructs a single writer
filter from its flags, and keeps it running until it receives SIGINT
or SIGTERM. SIGHUP forces a rotation and the filter keeps running, the
way a cron-driven logrotate postrotate script would signal a
long-running daemon.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("backend", string(factory.BackendTypeASCII), "writer backend type")
	serveCmd.Flags().String("path", "", "filter destination path (required)")
	serveCmd.Flags().Float64("rotation-interval", 0, "rotation interval in seconds (0 uses the process config's default_rotation_interval_secs)")
	serveCmd.Flags().StringToString("set", nil, "backend config key=value, repeatable")
	rootCmd.AddCommand(serveCmd)
}

func runServe(command *cobra.Command, _ []string) error {
	global, err := getGlobalConf(command)
	if err != nil {
		return fmt.Errorf("failed to read global flags: %w", err)
	}

	appCfg, err := config.Load(global.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load process config: %w", err)
	}
	if global.Debug {
		appCfg.Debug = true
	}

	path, err := command.Flags().GetString("path")
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("--path is required")
	}
	backendType, err := command.Flags().GetString("backend")
	if err != nil {
		return err
	}
	rotationInterval, err := command.Flags().GetFloat64("rotation-interval")
	if err != nil {
		return err
	}
	if rotationInterval == 0 {
		rotationInterval = appCfg.DefaultRotationSecs
	}
	extra, err := command.Flags().GetStringToString("set")
	if err != nil {
		return err
	}

	log := logger.New(os.Stdout, appCfg.Debug)

	dispatcher, err := newEventDispatcher(log, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	backend, err := factory.CreateBackend(factory.BackendType(backendType), dispatcher, log)
	if err != nil {
		return fmt.Errorf("failed to create %q backend: %w", backendType, err)
	}

	name := fmt.Sprintf("%s:%s", path, backendType)
	frontend := logging.NewFrontend(name, backend, log)

	fb := builder.NewFilterBuilder().WithPath(path).WithRotationInterval(rotationInterval)
	fb = fb.WithConfig("batch:max_records", strconv.Itoa(appCfg.DefaultMaxRecords))
	fb = fb.WithConfig("batch:max_delay_secs", strconv.FormatFloat(appCfg.DefaultMaxDelaySecs, 'f', -1, 64))
	for k, v := range extra {
		fb = fb.WithConfig(k, v)
	}
	info, err := fb.Build()
	if err != nil {
		return fmt.Errorf("failed to build filter config: %w", err)
	}

	if err := frontend.Init(info, connSchema); err != nil {
		return fmt.Errorf("failed to initialize filter %q: %w", name, err)
	}

	admin := adminhttp.NewAdminServer(appCfg.Listen)
	admin.RegisterFilter(frontend)
	go func() {
		if err := admin.Run(); err != nil {
			log.Error().Err(err).Msg("admin server exited")
		}
	}()

	if global.PidFile != "" {
		if err := os.WriteFile(global.PidFile, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
			log.Warn().Err(err).Str("pid_file", global.PidFile).Msg("failed to write pid file")
		} else {
			defer os.Remove(global.PidFile)
		}
	}

	log.Info().Str("filter", name).Str("listen", appCfg.Listen).Msg("filter serving")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range sigCh {
		if sig == syscall.SIGHUP {
			if err := frontend.Rotate(rotatedPath(path), true, false); err != nil {
				log.Error().Err(err).Msg("rotation failed")
			}
			continue
		}
		break
	}

	admin.UnregisterFilter(name)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return frontend.Finish(ctx)
}

func rotatedPath(path string) string {
	return fmt.Sprintf("%s.%d", path, time.Now().Unix())
}
