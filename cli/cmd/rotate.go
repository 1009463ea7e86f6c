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
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "force a rotation against a running filter",
	Long: `rotate signals a SIGHUP to the process recorded in the pid file
a "serve" invocation wrote with --pid-file, the control-file handshake a
running filter uses in place of Zeek's internal rotation timer.`,
	RunE: runRotate,
}

func init() {
	rootCmd.AddCommand(rotateCmd)
}

func runRotate(command *cobra.Command, _ []string) error {
	global, err := getGlobalConf(command)
	if err != nil {
		return fmt.Errorf("failed to read global flags: %w", err)
	}
	if global.PidFile == "" {
		return fmt.Errorf("--pid-file is required to locate the running filter")
	}

	raw, err := os.ReadFile(global.PidFile)
	if err != nil {
		return fmt.Errorf("failed to read pid file %q: %w", global.PidFile, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return fmt.Errorf("pid file %q does not contain a valid pid: %w", global.PidFile, err)
	}

	if err := syscall.Kill(pid, syscall.SIGHUP); err != nil {
		return fmt.Errorf("failed to signal pid %d: %w", pid, err)
	}
	fmt.Printf("rotation requested for pid %d\n", pid)
	return nil
}
