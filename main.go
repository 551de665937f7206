package main

import "github.com/unilink/leaderboard/cmd"

func main() {
	cmd.Execute()
}
