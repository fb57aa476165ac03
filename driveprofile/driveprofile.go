// Package driveprofile provides a lookup table of named tape drive
// capability profiles (LTO and DDS generations): the tape-domain analogue
// of disko's predefined disk geometries, so a caller can name a drive model
// and get back a magtape.DriveParams instead of hand-entering a datasheet.
// The fixture package and the command's --profile flag consult it.
package driveprofile

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/petrkotek/magtape"
)

// Profile is one row of the embedded table.
type Profile struct {
	Name               string `csv:"name"`
	Slug               string `csv:"slug"`
	FirstYearAvailable uint   `csv:"first_year_available"`
	FormFactor         string `csv:"form_factor"`
	IsRemovable        uint   `csv:"is_removable"`

	MinBlockSize     uint32 `csv:"min_block_size"`
	DefaultBlockSize uint32 `csv:"default_block_size"`
	MaxBlockSize     uint32 `csv:"max_block_size"`
	MaxPartitions    int    `csv:"max_partitions"`

	SupportsSetMarks                  uint   `csv:"supports_setmarks"`
	SupportsSequentialFilemarkSpacing uint   `csv:"supports_sequential_filemark_spacing"`
	Notes                              string `csv:"notes"`
}

// DriveParams converts the profile row into the magtape.DriveParams the
// rest of the package consumes (the simulated fixture, and the simulated
// drive the command's --profile flag seeds).
func (p Profile) DriveParams() magtape.DriveParams {
	return magtape.DriveParams{
		MinBlockSize:                      p.MinBlockSize,
		DefaultBlockSize:                  p.DefaultBlockSize,
		MaxBlockSize:                      p.MaxBlockSize,
		MaxPartitions:                     p.MaxPartitions,
		SupportsSetMarks:                  p.SupportsSetMarks != 0,
		SupportsSequentialFilemarkSpacing: p.SupportsSequentialFilemarkSpacing != 0,
	}
}

//go:embed profiles.csv
var rawCSV string

var profiles map[string]Profile

// order holds the profile slugs in the order their rows appear in the table.
var order []string

// Get returns the predefined profile with the given slug (e.g. "lto7"), or
// an error if no such profile is known.
func Get(slug string) (Profile, error) {
	p, ok := profiles[slug]
	if ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("driveprofile: no predefined drive profile with slug %q", slug)
}

// Names returns every known profile slug, sorted by first appearance in
// the embedded table, for callers building a flag's list of valid choices.
func Names() []string {
	return append([]string(nil), order...)
}

func init() {
	profiles = make(map[string]Profile)
	reader := strings.NewReader(rawCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row Profile) error {
		if _, exists := profiles[row.Slug]; exists {
			return fmt.Errorf("driveprofile: duplicate definition for slug %q on row %d", row.Slug, len(profiles)+1)
		}
		profiles[row.Slug] = row
		order = append(order, row.Slug)
		return nil
	})
	if err != nil && err != io.EOF {
		panic(err)
	}
}
