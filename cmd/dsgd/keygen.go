package main

import (
	"flag"
	"fmt"
	"os"
)

func keygenCommand(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	path := fs.String("out", defaultIdentityPath(), "identity file to write")
	force := fs.Bool("force", false, "overwrite an existing identity file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(*path); err == nil && !*force {
		fmt.Printf("Warning: identity already exists at %s\n", *path)
		fmt.Print("Overwrite? (y/N): ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Identity generation cancelled")
			return nil
		}
	}

	fmt.Println("Generating new identity...")
	id, err := GenerateIdentity()
	if err != nil {
		return fmt.Errorf("failed to generate identity: %w", err)
	}
	if err := id.SaveToFile(*path); err != nil {
		return err
	}

	fmt.Printf("Identity saved to %s\n", *path)
	fmt.Printf("Object id: %s\n", id.ObjectId())
	return nil
}
