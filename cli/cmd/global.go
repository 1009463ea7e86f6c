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
	"github.com/spf13/cobra"
)

// GlobalFlags are flags defined globally and inherited by every
// sub-command.
type GlobalFlags struct {
	Debug      bool   // enable debug-level logging
	ConfigFile string // optional YAML process config
	PidFile    string // where serve writes its own pid, for rotate to find it
}

func getGlobalConf(command *cobra.Command) (conf GlobalFlags, err error) {
	conf.Debug, err = command.Flags().GetBool("debug")
	if err != nil {
		return
	}

	conf.ConfigFile, err = command.Flags().GetString("config")
	if err != nil {
		return
	}

	conf.PidFile, err = command.Flags().GetString("pid-file")
	if err != nil {
		return
	}
	return
}
