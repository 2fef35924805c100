package main

import "github.com/jouleflux/jouleflux/internal/cli"

// version is overridable at link time:
//
//	go build -ldflags "-X main.version=..."
var version = "0.1.0"

func main() {
	cli.SetVersion(version)
	cli.Execute()
}
