package main

import "github.com/unsuns06/ReplayTV-Stremio-sub000/cmd"

func main() {
	cmd.Execute()
}
