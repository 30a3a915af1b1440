package main

import (
	"ekyc.io/cmd"
	"ekyc.io/infrastructure/env"
)

func init() {
	env.LoadEnv()
}

func main() {
	cmd.Execute()
}
