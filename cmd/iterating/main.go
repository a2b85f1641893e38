// Command iterating drives a large set of timers by polling every pending timer on every step.
package main

import (
	"github.com/hackebrot/go-unpark-bench/internal/app"
	"github.com/hackebrot/go-unpark-bench/internal/driver"
)

func main() {
	app.Main(driver.StrategyIterating)
}
