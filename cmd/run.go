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
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/watercourse/gosv/device"
	"github.com/watercourse/gosv/registry"
	"github.com/watercourse/gosv/solver"
)

// runCmd executes a full simulation from an mf file.
var runCmd = &cobra.Command{
	Use:   "run [simulation file]",
	Short: "Run a shallow water simulation",
	Long: `
Reads the mf-format simulation file, builds the mesh, initial state and
boundary conditions, writes any requested check files and advances the
solution to the configured end time, firing output drivers along the way.

gosv run simulation.mf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}

		ts, err := buildScheme(args[0])
		if err != nil {
			return err
		}
		if err := ts.WriteCheckFiles(); err != nil {
			return err
		}
		return ts.Run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("profile", false, "write a CPU profile alongside the run")
}

// buildScheme wires the context, compute queue, solver and temporal
// scheme for a simulation file.
func buildScheme(path string) (*solver.TemporalScheme, error) {
	ctx, err := registry.NewContext(path)
	if err != nil {
		return nil, err
	}
	log.Infof("Simulation base directory: %s", ctx.BasePath)
	log.Infof("Simulation: %s", ctx.Name())

	platform, err := device.Select(ctx.Conf)
	if err != nil {
		return nil, err
	}
	queue := device.NewQueue(platform)

	s, err := solver.NewSolver(ctx, queue)
	if err != nil {
		return nil, err
	}
	if err := ctx.WriteManifest(); err != nil {
		return nil, err
	}
	return solver.NewTemporalScheme(ctx, s)
}
