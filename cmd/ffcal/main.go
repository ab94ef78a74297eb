package main

import (
	// the weekly schedule and time conversion need Asia/Bangkok even on minimal images
	_ "time/tzdata"

	"github.com/pfrederiksen/ff-events/internal/cli"
)

func main() {
	cli.Execute()
}
