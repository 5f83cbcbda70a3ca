package main

import (
	"embed"
	"os"

	"github.com/willmadison/donation-flow/cli"
)

var (
	//go:embed static/public/*
	ui embed.FS
)

func main() {
	env := cli.Environment{
		Stderr: os.Stderr,
		Stdout: os.Stdout,
		Stdin:  os.Stdin,
		Args:   os.Args[1:],
		UI:     ui,
	}

	os.Exit(cli.Run(env))
}
