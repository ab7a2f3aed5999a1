package main

import (
	"os"

	"horse.fit/threatwatch/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
