package main

import "github.com/frahmantamala/salary-simulator/cmd"

func main() {
	cmd.Execute()
}
