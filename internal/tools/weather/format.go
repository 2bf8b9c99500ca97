package weather

import (
	"fmt"
	"strconv"
	"strings"
)

const notAvailable = "N/A"

// Format renders f as the tool's text output. The requested coordinates
// are used when the provider does not echo its own. At most hours
// forecast entries are listed.
func Format(f *Forecast, latitude, longitude float64, hours int) string {
	lat, lon := latitude, longitude
	if f.Latitude != nil {
		lat = *f.Latitude
	}
	if f.Longitude != nil {
		lon = *f.Longitude
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current Weather at (%s, %s):\n", number(&lat), number(&lon))
	fmt.Fprintf(&b, "- Temperature: %s°C\n", number(f.Current.Temperature))
	fmt.Fprintf(&b, "- Wind Speed: %s km/h\n", number(f.Current.WindSpeed))
	fmt.Fprintf(&b, "- Timezone: %s\n", text(f.Timezone))

	times := f.Hourly.Time
	if len(times) > hours {
		times = times[:hours]
	}
	if len(times) > 0 {
		fmt.Fprintf(&b, "\nNext %d hours forecast:\n", len(times))
		for i, t := range times {
			var temp *float64
			if i < len(f.Hourly.Temperature) {
				temp = f.Hourly.Temperature[i]
			}
			fmt.Fprintf(&b, "  %s: %s°C\n", t, number(temp))
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func number(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func text(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
