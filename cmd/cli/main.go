package main

import (
	"github.com/mchmarny/attrition/pkg/cli"
)

func main() {
	cli.Execute()
}
