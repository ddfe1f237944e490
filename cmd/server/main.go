package main

import "flm/internal/app/server"

func main() {
	server.Run()
}
