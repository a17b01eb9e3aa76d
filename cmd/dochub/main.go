// Package main - консольный клиент DocHub.
package main

import "os"

func main() {
	os.Exit(Run())
}
