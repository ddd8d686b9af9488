package row

import (
	"regexp"
	"strconv"
	"time"
	_ "time/tzdata" // zone names don't depend on the host system

	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

var offsetRegexp = regexp.MustCompile(`^([+-])(\d{2}):?(\d{2})$`) // nolint: gochecknoglobals

// ParseTimeZone accepts "UTC", an IANA name such as "Asia/Tokyo" or a fixed offset such as "+09:00".
func ParseTimeZone(zone string) (*time.Location, error) {
	if zone == "" || zone == "UTC" || zone == "Z" {
		return time.UTC, nil
	}

	if m := offsetRegexp.FindStringSubmatch(zone); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes, _ := strconv.Atoi(m[3])
		if hours > 23 || minutes > 59 {
			return nil, errors.Errorf(`invalid time zone offset "%s"`, zone)
		}
		offset := hours*3600 + minutes*60
		if m[1] == "-" {
			offset = -offset
		}
		return time.FixedZone(zone, offset), nil
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, errors.Errorf(`unknown time zone "%s"`, zone)
	}
	return loc, nil
}
