package device

import (
	"fmt"
	"strings"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/display"
	"github.com/watercourse/gosv/fault"
)

// Platform is an execution backend for the compute queue. The process
// exposes a serial platform and a parallel platform spanning the host
// CPUs; selection follows the `device parameters` block by id or by a
// preference list of names, with "show" printing the available set.
type Platform struct {
	ID       int
	Name     string
	Vendor   string
	Parallel bool
}

func Platforms() []Platform {
	return []Platform{
		{ID: 0, Name: "serial", Vendor: "host", Parallel: false},
		{ID: 1, Name: "parallel", Vendor: "host", Parallel: true},
	}
}

func showPlatforms(platforms []Platform) {
	table := display.NewTable(
		display.Column{Width: 10, Heading: "ID", Format: "%d"},
		display.Column{Width: 10, Heading: "Name", Format: "%s"},
		display.Column{Width: 50, Heading: "Vendor", Format: "%s"},
	)
	fmt.Println("The following platforms are available: ")
	table.WriteTopRule()
	table.WriteHeaderRow()
	table.WriteMidRule()
	for _, p := range platforms {
		table.WriteDataRow(p.ID, p.Name, p.Vendor)
	}
	table.WriteBotRule()
	fmt.Println()
}

// Select resolves the `device parameters` block to a platform. An
// absent block selects the parallel platform.
func Select(conf *config.Config) (Platform, error) {
	platforms := Platforms()

	dp, ok := conf.Child("device parameters")
	if !ok {
		return platforms[1], nil
	}

	if dp.Count("platform id") == 1 {
		id, err := dp.GetInt("platform id")
		if err != nil {
			return Platform{}, err
		}
		if id < 0 || int(id) >= len(platforms) {
			return Platform{}, fault.New(fault.ConfigurationError,
				"platform ID = %d not found", id)
		}
		fmt.Printf("Using platform %d: %s\n", id, platforms[id].Name)
		return platforms[id], nil
	}

	requested := config.SplitStrings(dp.String("platforms", "show,parallel,serial"))
	for _, name := range requested {
		name = strings.ToLower(name)
		if name == "show" {
			showPlatforms(platforms)
			continue
		}
		for _, p := range platforms {
			if name == p.Name {
				fmt.Printf("Using platform %d: %s\n", p.ID, p.Name)
				return p, nil
			}
		}
		fmt.Printf("Platform %s is not available.\n", name)
	}
	return Platform{}, fault.New(fault.ConfigurationError, "no requested platform is available")
}
