// Package weather provides the get_weather tool backed by the Open-Meteo
// forecast API.
package weather

import (
	"context"

	"github.com/felixgeelhaar/toolhost/schema"
	"github.com/felixgeelhaar/toolhost/server"
)

// Server identity of the weather host.
const (
	ServerName    = "weather-server"
	ServerVersion = "1.0.0"
)

// DefaultForecastHours is how many hourly entries are listed by default.
const DefaultForecastHours = 3

// Input is the argument shape of get_weather.
type Input struct {
	Latitude  float64 `json:"latitude" jsonschema:"required,minimum=-90,maximum=90,description=Latitude of the location"`
	Longitude float64 `json:"longitude" jsonschema:"required,minimum=-180,maximum=180,description=Longitude of the location"`
}

// Register declares get_weather on rb. Forecasts come from client and list
// up to hours hourly entries.
func Register(rb *server.RegistryBuilder, client *Client, hours int) {
	if hours <= 0 {
		hours = DefaultForecastHours
	}

	rb.Tool("get_weather").
		Description("Get current weather and hourly forecast for a location").
		Input(schema.MustFor[Input]()).
		Handler(func(ctx context.Context, args server.Arguments) server.Result {
			lat, err := args.Number("latitude")
			if err != nil {
				return server.FromError(err)
			}
			lon, err := args.Number("longitude")
			if err != nil {
				return server.FromError(err)
			}

			f, err := client.Forecast(ctx, lat, lon)
			if err != nil {
				return server.FromError(err)
			}
			return server.Text(Format(f, lat, lon, hours))
		})
}
