package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/dsgmesh/dsgcore/pkg/chunkstore"
	"github.com/dsgmesh/dsgcore/pkg/contract"
	"github.com/dsgmesh/dsgcore/pkg/dsgconfig"
	"github.com/dsgmesh/dsgcore/pkg/stack"
)

// statusCommand opens a durable node's bbolt database directly and prints
// a point-in-time table of every contract it knows about. This is a
// simpler scope than the teacher's statusCommand, which queries a running
// agent's control API over TCP: dsgd has no comparable control-plane
// listener, so status runs as its own short-lived process against the
// database file (see DESIGN.md).
func statusCommand(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	dbPath := fs.String("db", "dsgd.db", "bbolt database path")
	chunkDir := fs.String("chunks", "dsgd-chunks", "chunk storage directory")
	identityPath := fs.String("identity", defaultIdentityPath(), "device identity file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := LoadIdentityFromFile(*identityPath)
	if err != nil {
		return fmt.Errorf("failed to load identity (run 'dsgd keygen' first): %w", err)
	}

	ks := signingKeystore{id: id}
	bolt, err := stack.OpenBoltStack(*dbPath, id.ObjectId(), ks)
	if err != nil {
		return fmt.Errorf("failed to open object stack: %w", err)
	}
	defer bolt.Close()

	disk, err := chunkstore.NewDiskStore(*chunkDir)
	if err != nil {
		return fmt.Errorf("failed to open chunk store: %w", err)
	}

	svc := contract.NewService(bolt, disk, dsgconfig.DefaultConfig())
	snaps, err := svc.DebugSnapshot(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read contract snapshot: %w", err)
	}

	if len(snaps) == 0 {
		fmt.Println("No known contracts.")
		return nil
	}

	fmt.Printf("%-66s %-10s %-8s %s\n", "CONTRACT", "STATE", "CHALLENGE", "CHALLENGE ID")
	for _, s := range snaps {
		challenge := "-"
		if s.HasChallenge {
			challenge = s.ChallengeId.String()
		}
		fmt.Printf("%-66s %-10s %-8v %s\n", s.ContractId, s.StateKind, s.HasChallenge, challenge)
	}
	return nil
}
