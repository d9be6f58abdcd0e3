package main

import "github.com/giovaniif/motorent/cmd/api"

func main() {
	api.StartServer()
}
