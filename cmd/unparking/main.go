// Command unparking drives a large set of timers by polling only the timers that signalled readiness.
package main

import (
	"github.com/hackebrot/go-unpark-bench/internal/app"
	"github.com/hackebrot/go-unpark-bench/internal/driver"
)

func main() {
	app.Main(driver.StrategyUnparking)
}
