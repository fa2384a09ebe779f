package main

import (
	"os"

	"github.com/dehvCurtis/RustDefend/internal/app"
)

func main() {
	os.Exit(app.Run())
}
