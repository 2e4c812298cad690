package main

import "github.com/Mohsinsiddi/stark20/cmd"

func main() {
	cmd.Execute()
}
