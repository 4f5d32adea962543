package main

import "github.com/tablesight/tablesight/cmd/tablesight/cmd"

func main() {
	cmd.Execute()
}
