/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/nhc-net/nsg-sync/cmd"

func main() {
	cmd.Execute()
}
