package main

import "github.com/c0de128/mealmate-backup/cmd"

func main() {
	cmd.Execute()
}
