package timezone

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"todolist/config"

	"github.com/rs/zerolog/log"
)

var (
	appLocation *time.Location

	ErrInvalidDateTime = errors.New("invalid date-time")

	// dateTimeLayouts are tried in order by ParseDateTime.
	dateTimeLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999",
		"2006-01-02T15:04:05.999999",
		"2006-01-02",
	}
)

func init() {
	cfg := config.Get()

	name := cfg.App.Timezone
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")

		name = "UTC"
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", name).
			Msg("Failed to load timezone, falling back to UTC. Please use standard timezone names like 'Asia/Jakarta', 'UTC', 'America/New_York'")

		appLocation = time.UTC

		return
	}

	appLocation = loc
	log.Info().
		Str("timezone", name).
		Str("location", loc.String()).
		Msg("Application timezone initialized")
}

// Now returns the current time in the application timezone
func Now() time.Time {
	return time.Now().In(GetLocation())
}

// ToAppTime converts a time to the application timezone
func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}

// GetLocation returns the current application timezone location
func GetLocation() *time.Location {
	if appLocation == nil {
		return time.UTC
	}

	return appLocation
}

// Parse parses a time string in the application timezone
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, GetLocation())
}

// Format formats a time in the application timezone
func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// ParseDateTime accepts RFC 3339, "2006-01-02 15:04:05[.ffffff]", a bare date or
// integer milliseconds since epoch. Values without an offset are read in the
// application timezone.
func ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDateTime
	}

	if millis, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(millis).In(GetLocation()), nil
	}

	for _, layout := range dateTimeLayouts {
		if t, err := Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrInvalidDateTime
}
