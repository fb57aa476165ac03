// Command magtape is a thin wrapper around the agent package's backup,
// restore, validate, and verify operations, the same way dargueta-disko's
// cmd/main.go is a thin wrapper around disko's driver API: argument
// parsing, a device/simulator switch, and a top-level fatal log sink live
// here; none of the business logic does.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "magtape",
		Usage: "multi-volume, incremental-capable tape backup engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "device",
				Value: "/dev/nst0",
				Usage: "tape device path (ignored when --simulate is set)",
			},
			&cli.Uint64Flag{
				Name:  "simulate",
				Usage: "use an in-memory simulated drive of this many bytes instead of --device",
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "driveprofile slug (see 'magtape profiles') seeding the simulated drive's capabilities",
			},
			&cli.BoolFlag{
				Name:  "toc-mark",
				Usage: "write an end-of-content mark ahead of the TOC (only on drives without partitions or setmarks that support sequential filemark spacing)",
			},
		},
		Commands: []*cli.Command{
			formatCommand,
			backupCommand,
			restoreCommand,
			validateCommand,
			verifyCommand,
			listCommand,
			ejectCommand,
			profilesCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("magtape: %s", err)
	}
}
