package main // Entry point package

import (
	_ "time/tzdata" // restaurant time zones resolve on hosts without zoneinfo

	"github.com/iliyamo/restaurant-reservation/internal/cli"
)

func main() {
	cli.Execute()
}
