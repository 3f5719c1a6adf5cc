package main

import "headless-cms-backend/cmd"

func main() {
	cmd.Execute()
}
