package main

import (
	"github.com/racedayapp/notify-manager-go/cmd"
)

func main() {
	cmd.Execute()
}
