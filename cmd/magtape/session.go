package main

import (
	"time"

	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/agent"
	"github.com/petrkotek/magtape/drive"
	"github.com/petrkotek/magtape/driveprofile"
	"github.com/petrkotek/magtape/streammgr"
	"github.com/urfave/cli/v2"
)

// openDrive builds the RawDevice the rest of the command operates on: a
// real Linux tape device at --device, or an in-memory Simulator sized
// --simulate bytes when that flag is non-zero. --profile, when given,
// seeds the simulated drive's capabilities from a known drive model
// instead of a generic default.
func openDrive(c *cli.Context) (*drive.Drive, error) {
	if simBytes := c.Uint64("simulate"); simBytes > 0 {
		params := magtape.DriveParams{
			MinBlockSize:     512,
			DefaultBlockSize: 65536,
			MaxBlockSize:     1 << 20,
			MaxPartitions:    1,
			SupportsSetMarks: true,
		}
		if slug := c.String("profile"); slug != "" {
			profile, err := driveprofile.Get(slug)
			if err != nil {
				return nil, err
			}
			params = profile.DriveParams()
		}
		sim := drive.NewSimulator(params, simBytes)
		return drive.Open(func() (drive.RawDevice, error) { return sim, nil })
	}

	path := c.String("device")
	return drive.Open(func() (drive.RawDevice, error) { return drive.OpenLinuxDevice(path) })
}

// openManager carries a freshly opened Drive through LoadMedia and
// PrepareMedia, the same three-step sequence every agent needs before it
// can issue streams.
func openManager(c *cli.Context) (*streammgr.Manager, *drive.Drive, error) {
	drv, err := openDrive(c)
	if err != nil {
		return nil, nil, err
	}

	mgr := streammgr.New(drv)
	if err := mgr.MarkOpen(); err != nil {
		drv.Close()
		return nil, nil, err
	}
	if err := mgr.LoadMedia(); err != nil {
		drv.Close()
		return nil, nil, err
	}
	if err := mgr.PrepareMedia(c.Bool("toc-mark")); err != nil {
		drv.Close()
		return nil, nil, err
	}
	return mgr, drv, nil
}

// openSession builds a Session and, unless fresh is true, tries to read
// back the existing catalog so a backup appends to the tape's history
// instead of discarding it. When no catalog can be read (blank media, or
// fresh is requested), a new empty TOC is started instead.
func openSession(c *cli.Context, fresh bool, hooks agent.Hooks) (*agent.Session, error) {
	mgr, drv, err := openManager(c)
	if err != nil {
		return nil, err
	}

	sess := agent.NewSession(drv, mgr, magtape.NewTOC("", time.Now()), hooks)
	if !fresh {
		if toc, err := sess.ReadTOC(); err == nil {
			sess.TOC = toc
		}
	}
	return sess, nil
}
