// Package main implements dsgd, the storage-guarantee daemon and its
// operator CLI: start the contract service and SN ping session, print a
// point-in-time status snapshot, and generate a device identity.
package main

import (
	"fmt"
	"os"
)

var (
	version    = "dev"
	buildTime  = "unknown"
	commitHash = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]
	var err error
	switch command {
	case "version", "--version", "-v":
		printVersion()
	case "help", "--help", "-h":
		printUsage()
	case "start":
		err = startCommand(args)
	case "status":
		err = statusCommand(args)
	case "keygen":
		err = keygenCommand(args)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("dsgd %s\n", version)
	fmt.Printf("Built: %s\n", buildTime)
	fmt.Printf("Commit: %s\n", commitHash)
}

func printUsage() {
	fmt.Printf(`dsgd v%s - DSG storage-guarantee daemon

Usage:
  dsgd <command> [options]

Commands:
  start     Start the contract service and SN ping session
  status    Print a snapshot of every known contract
  keygen    Generate a new device identity
  version   Show version information
  help      Show this help message

Examples:
  # Run a throwaway in-memory node for local experimentation
  dsgd start -dev

  # Run a durable node, listening for SN ping sessions
  dsgd start -db ./dsgd.db -listen 0.0.0.0:27640

  # Generate and persist a device identity
  dsgd keygen

  # Inspect the contracts a durable node knows about
  dsgd status -db ./dsgd.db

`, version)
}
