package main

import "github.com/Vishnu1805/taskdeck/cmd"

func main() {
	cmd.Execute()
}
