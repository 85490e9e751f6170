package main

import "profile-manager/cmd"

func main() {
	cmd.Execute()
}
