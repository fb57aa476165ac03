package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/agent"
	"github.com/petrkotek/magtape/catalog"
	"github.com/petrkotek/magtape/driveprofile"
	"github.com/petrkotek/magtape/errors"
	"github.com/urfave/cli/v2"
)

var formatCommand = &cli.Command{
	Name:      "format",
	Usage:     "format blank media, creating partitions if the drive supports them",
	ArgsUsage: " ",
	Flags: []cli.Flag{
		&cli.Int64Flag{Name: "initiator-mib", Usage: "size in MiB of the initiator partition used for the TOC, if the drive can partition"},
	},
	Action: func(c *cli.Context) error {
		drv, err := openDrive(c)
		if err != nil {
			return err
		}
		defer drv.Close()
		if err := drv.FormatMedia(c.Int64("initiator-mib")); err != nil {
			return err
		}
		log.Printf("format: media ready, %d partition(s), block size %d", drv.Media.PartitionCount, drv.Media.BlockSize)
		return nil
	},
}

var backupCommand = &cli.Command{
	Name:      "backup",
	Usage:     "write a new backup set to the current volume",
	ArgsUsage: "PATH [PATH...]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "description", Usage: "free-text description stored with this set"},
		&cli.StringSliceFlag{Name: "include", Usage: "glob pattern to include (repeatable); default is everything"},
		&cli.BoolFlag{Name: "incremental", Usage: "only back up files modified since their last appearance in this volume chain"},
		&cli.BoolFlag{Name: "ignore-failures", Usage: "keep going after a per-file failure instead of stopping the batch"},
		&cli.StringFlag{Name: "hash", Value: "crc64", Usage: "payload hash algorithm: none, crc32, crc64, xxhash32, xxhash3, xxhash64, xxhash128"},
		&cli.UintFlag{Name: "block-size", Usage: "content block size in bytes; 0 uses the drive's default"},
		&cli.BoolFlag{Name: "fresh", Usage: "start a new catalog instead of appending to the existing one"},
	},
	Action: func(c *cli.Context) error {
		if c.Args().Len() == 0 {
			return fmt.Errorf("backup: at least one PATH is required")
		}
		algo, err := parseHashAlgorithm(c.String("hash"))
		if err != nil {
			return err
		}

		sess, err := openSession(c, c.Bool("fresh"), logHooks{verb: "backup"})
		if err != nil {
			return err
		}
		defer sess.Drv.Close()

		now := time.Now()
		sess.TOC.BeginSet(magtape.SetTOC{
			Description: c.String("description"),
			CreatedAt:   now,
			Volume:      sess.TOC.Volume,
		})

		patterns := catalog.NewPatternSet(patternsOrNil(c.StringSlice("include")))
		items, err := collectFiles(c.Args().Slice(), patterns)
		if err != nil {
			return err
		}

		backupAgent := agent.NewBackupAgent(sess)
		opts := agent.BatchOptions{
			Files:          items,
			IgnoreFailures: c.Bool("ignore-failures"),
			Incremental:    c.Bool("incremental"),
			Algorithm:      algo,
			BlockSize:      uint32(c.Uint("block-size")),
		}
		state := &agent.BatchState{}

		err = backupAgent.RunBatch(opts, state)
		if errors.IsEndOfMedia(err) {
			log.Fatalf("backup: end of media reached after %d file(s); load the next volume and rerun with --fresh=false to continue", state.Processed)
		}
		if err != nil {
			return err
		}

		if err := sess.Mgr.EndWriteContentSet(); err != nil {
			return err
		}
		if err := sess.WriteTOC(); err != nil {
			return err
		}
		log.Printf("backup: wrote set %d (%d file(s))", sess.TOC.CurrentSetIndex()+1, state.Processed)
		return nil
	},
}

var restoreCommand = &cli.Command{
	Name:      "restore",
	Usage:     "restore files from a backup set to local disk",
	ArgsUsage: " ",
	Flags:     readBatchFlags,
	Action: func(c *cli.Context) error {
		return runReadBatch(c, "restore", func(targetRoot string) agent.Consumer {
			return agent.RestoreConsumer{TargetRoot: targetRoot}
		})
	},
}

var verifyCommand = &cli.Command{
	Name:      "verify",
	Usage:     "byte-for-byte compare a backup set's payloads against local disk",
	ArgsUsage: " ",
	Flags:     readBatchFlags,
	Action: func(c *cli.Context) error {
		return runReadBatch(c, "verify", func(targetRoot string) agent.Consumer {
			return agent.VerifyConsumer{TargetRoot: targetRoot}
		})
	},
}

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "read a backup set's payloads and check their recorded digests without writing anything",
	ArgsUsage: " ",
	Flags:     readBatchFlags,
	Action: func(c *cli.Context) error {
		return runReadBatch(c, "validate", func(string) agent.Consumer {
			return agent.ValidateConsumer{}
		})
	},
}

var readBatchFlags = []cli.Flag{
	&cli.StringSliceFlag{Name: "include", Usage: "glob pattern to include (repeatable); default is everything"},
	&cli.BoolFlag{Name: "incremental", Usage: "walk the full incremental chain down to its base set"},
	&cli.IntFlag{Name: "set", Usage: "set to start from: 0 means latest, 1..N oldest-first, -1..-(N-1) newest-first"},
	&cli.StringFlag{Name: "target", Usage: "local directory restored/verified files are rooted at"},
}

func runReadBatch(c *cli.Context, verb string, newConsumer func(targetRoot string) agent.Consumer) error {
	sess, err := openSession(c, false, logHooks{verb: verb})
	if err != nil {
		return err
	}
	defer sess.Drv.Close()

	patterns := catalog.NewPatternSet(patternsOrNil(c.StringSlice("include")))
	readAgent := agent.NewReadAgent(sess, newConsumer(c.String("target")))
	opts := agent.ReadBatchOptions{
		Patterns:    patterns,
		Incremental: c.Bool("incremental"),
		FromSet:     c.Int("set"),
	}
	state := &agent.BatchState{}
	if err := readAgent.RunBatch(opts, state); err != nil {
		return err
	}
	log.Printf("%s: done -- processed %d, failed %d", verb, state.Processed, state.Failed)
	return nil
}

var listCommand = &cli.Command{
	Name:      "list",
	Usage:     "print the sets and files recorded in the current volume's catalog",
	ArgsUsage: " ",
	Action: func(c *cli.Context) error {
		sess, err := openSession(c, false, nil)
		if err != nil {
			return err
		}
		defer sess.Drv.Close()

		for i, set := range sess.TOC.Sets {
			incr := ""
			if set.Incremental() {
				incr = " [incremental]"
			}
			fmt.Printf("set %d: %q, volume %d, %d file(s)%s\n", i+1, set.Description, set.Volume, len(set.Files), incr)
			for _, fi := range set.Files {
				fmt.Printf("  %10d  %s  %s\n", fi.Descriptor.Length, fi.Descriptor.LastModified.Format(time.RFC3339), fi.Descriptor.FullName)
			}
		}
		return nil
	},
}

var ejectCommand = &cli.Command{
	Name:  "eject",
	Usage: "unload the currently loaded medium",
	Action: func(c *cli.Context) error {
		drv, err := openDrive(c)
		if err != nil {
			return err
		}
		defer drv.Close()
		return drv.UnloadMedia()
	},
}

var profilesCommand = &cli.Command{
	Name:  "profiles",
	Usage: "list known tape drive capability profiles usable with --profile",
	Action: func(c *cli.Context) error {
		for _, slug := range driveprofile.Names() {
			p, err := driveprofile.Get(slug)
			if err != nil {
				return err
			}
			fmt.Printf("%-8s %s (%d)\n", slug, p.Name, p.FirstYearAvailable)
		}
		return nil
	},
}

func patternsOrNil(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}
	return patterns
}

func parseHashAlgorithm(name string) (magtape.HashAlgorithm, error) {
	switch strings.ToLower(name) {
	case "none":
		return magtape.HashNone, nil
	case "crc32":
		return magtape.HashCRC32, nil
	case "crc64":
		return magtape.HashCRC64, nil
	case "xxhash32":
		return magtape.HashXxHash32, nil
	case "xxhash3":
		return magtape.HashXxHash3, nil
	case "xxhash64":
		return magtape.HashXxHash64, nil
	case "xxhash128":
		return magtape.HashXxHash128, nil
	default:
		return 0, fmt.Errorf("unknown hash algorithm %q", name)
	}
}
