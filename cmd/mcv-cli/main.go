package main

import (
	"context"

	"mcvassist-backend/cmd/mcv-cli/commands"
	"mcvassist-backend/lib/telemetry"
)

func main() {
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
