package main

import "codearena/internal/server"

func main() {
	server.StartGinServer()
}
