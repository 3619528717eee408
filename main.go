/*
Copyright © 2025 PhilipWidoff
*/
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/PhilipWidoff/SmartPDF/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}
}
