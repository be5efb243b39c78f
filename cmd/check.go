/*
Copyright © 2021 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// checkCmd builds the simulation and writes the check files without
// time stepping, so mesh, active-cell and constant-field dumps can be
// inspected before a long run.
var checkCmd = &cobra.Command{
	Use:   "check [simulation file]",
	Short: "Write mesh and constant-field check files only",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		ts, err := buildScheme(args[0])
		if err != nil {
			return err
		}
		return ts.WriteCheckFiles()
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
