package main

import "video-translator/cmd"

func main() {
	cmd.Execute()
}
