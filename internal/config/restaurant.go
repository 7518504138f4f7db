package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// Restaurant is the static description of the dining room: its time zone,
// the table inventory and the party-size bound of each booking surface.
//
//	timezone: Europe/London
//	tables:
//	  - {number: 1, capacity: 2}
//	guestLimits:
//	  web: 12
//	  quick: 8
type Restaurant struct {
	Timezone    string         `yaml:"timezone"`
	Tables      []model.Table  `yaml:"tables"`
	GuestLimits map[string]int `yaml:"guestLimits"`

	location *time.Location
}

// DefaultRestaurant is used when no file is configured.
func DefaultRestaurant() Restaurant {
	r := Restaurant{
		Timezone:    "Europe/London",
		GuestLimits: map[string]int{model.SurfaceWeb: 12, model.SurfaceQuick: 8},
	}
	for i, c := range []int{2, 2, 4, 4, 4, 4, 6, 6, 8, 8} {
		r.Tables = append(r.Tables, model.Table{Number: i + 1, Capacity: c})
	}
	_ = r.resolve()
	return r
}

// LoadRestaurant reads path, or returns the defaults when path is empty.
// Omitted sections fall back to their defaults.
func LoadRestaurant(path string) (Restaurant, error) {
	if path == "" {
		return DefaultRestaurant(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Restaurant{}, fmt.Errorf("read restaurant config: %w", err)
	}
	return ParseRestaurant(b)
}

// ParseRestaurant decodes and validates a restaurant document.
func ParseRestaurant(b []byte) (Restaurant, error) {
	var r Restaurant
	if err := yaml.Unmarshal(b, &r); err != nil {
		return Restaurant{}, fmt.Errorf("parse restaurant config: %w", err)
	}
	def := DefaultRestaurant()
	if r.Timezone == "" {
		r.Timezone = def.Timezone
	}
	if len(r.Tables) == 0 {
		r.Tables = def.Tables
	}
	if len(r.GuestLimits) == 0 {
		r.GuestLimits = def.GuestLimits
	}
	if err := r.resolve(); err != nil {
		return Restaurant{}, err
	}
	return r, nil
}

func (r *Restaurant) resolve() error {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return fmt.Errorf("restaurant timezone %q: %w", r.Timezone, err)
	}
	r.location = loc
	seen := make(map[int]bool, len(r.Tables))
	for _, t := range r.Tables {
		if t.Number <= 0 {
			return errors.New("restaurant tables: number must be positive")
		}
		if seen[t.Number] {
			return fmt.Errorf("restaurant tables: duplicate table %d", t.Number)
		}
		if t.Capacity <= 0 {
			return fmt.Errorf("restaurant tables: table %d needs a positive capacity", t.Number)
		}
		seen[t.Number] = true
	}
	for surface, n := range r.GuestLimits {
		if n < 1 {
			return fmt.Errorf("restaurant guestLimits: %s must be at least 1", surface)
		}
	}
	return nil
}

// Location is the parsed time zone.
func (r Restaurant) Location() *time.Location {
	if r.location == nil {
		return time.UTC
	}
	return r.location
}
