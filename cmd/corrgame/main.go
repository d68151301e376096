package main

import "github.com/JaimeRLA/CorrelationGame/internal/cli"

func main() {
	cli.Execute()
}
