package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dsgmesh/dsgcore/pkg/chunkstore"
	"github.com/dsgmesh/dsgcore/pkg/contract"
	"github.com/dsgmesh/dsgcore/pkg/dsgconfig"
	"github.com/dsgmesh/dsgcore/pkg/dsglog"
	"github.com/dsgmesh/dsgcore/pkg/snping"
	"github.com/dsgmesh/dsgcore/pkg/stack"
)

// startCommand brings up a dsgd node: an ObjectStack (in-memory for -dev,
// durable bbolt otherwise), a chunk store backing it, a contract.Service
// wired to both, an snping.Listener accepting storage-node ping sessions if
// -listen is set, and a tick loop driving the service's contract
// state machine on cfg.AtomicInterval — the daemon half of the teacher's
// startCommand, minus its TCP control API (see DESIGN.md).
func startCommand(args []string) error {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	dev := fs.Bool("dev", false, "run with an in-memory, non-durable stack")
	dbPath := fs.String("db", "dsgd.db", "bbolt database path (ignored with -dev)")
	chunkDir := fs.String("chunks", "dsgd-chunks", "chunk storage directory (ignored with -dev)")
	listenAddr := fs.String("listen", "", "address to accept SN ping sessions on, e.g. 0.0.0.0:27640")
	identityPath := fs.String("identity", defaultIdentityPath(), "device identity file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := loadOrCreateIdentity(*identityPath)
	if err != nil {
		return fmt.Errorf("failed to load identity: %w", err)
	}
	fmt.Printf("Device id: %s\n", id.ObjectId())

	ks := signingKeystore{id: id}
	var objStack stack.ObjectStack
	var chunks chunkstore.Store
	if *dev {
		fmt.Println("Starting in-memory dev node...")
		objStack = stack.NewMemoryStack(id.ObjectId(), ks)
		chunks = chunkstore.NewMemoryStore()
	} else {
		fmt.Printf("Starting durable node (db=%s, chunks=%s)...\n", *dbPath, *chunkDir)
		bolt, err := stack.OpenBoltStack(*dbPath, id.ObjectId(), ks)
		if err != nil {
			return fmt.Errorf("failed to open object stack: %w", err)
		}
		defer bolt.Close()
		objStack = bolt

		disk, err := chunkstore.NewDiskStore(*chunkDir)
		if err != nil {
			return fmt.Errorf("failed to open chunk store: %w", err)
		}
		chunks = disk
	}

	cfg := dsgconfig.DefaultConfig()
	// svc exposes SyncContractState, HandleProof, and HandleQuery directly
	// as methods; nothing in this module defines an RPC surface a remote
	// caller reaches them through, so there is no registry to populate
	// here beyond constructing svc itself (see DESIGN.md).
	svc := contract.NewService(objStack, chunks, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var listener *snping.Listener
	if *listenAddr != "" {
		listener, err = snping.Listen(*listenAddr, nil)
		if err != nil {
			return fmt.Errorf("failed to start ping listener: %w", err)
		}
		defer listener.Close()
		fmt.Printf("SN ping listener on %s\n", listener.Addr())
		go serveSNPings(ctx, listener, id)
	}

	go runTickLoop(ctx, svc, cfg.AtomicInterval)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	fmt.Println("dsgd running. Press Ctrl+C to stop.")
	<-sig
	fmt.Println("Shutting down...")
	cancel()
	return nil
}

// serveSNPings accepts inbound ping sessions and answers them one at a
// time for the session's lifetime, logging and moving on when a session
// drops rather than tearing down the listener.
func serveSNPings(ctx context.Context, listener *snping.Listener, id *Identity) {
	log := dsglog.With(dsglog.Fields{"component": "dsgd", "subsystem": "snping-listener"})
	for {
		session, err := listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Warn("accept failed")
			continue
		}
		go func() {
			defer session.Close()
			responder, err := snping.Accept(session, id.NoiseKey())
			if err != nil {
				log.WithError(err).Warn("handshake failed")
				return
			}
			defer responder.Close()
			for {
				if err := responder.ServeOne(); err != nil {
					log.WithError(err).Debug("ping session ended")
					return
				}
			}
		}()
	}
}

// runTickLoop drives the contract service's state machine forward on a
// fixed cadence until ctx is cancelled.
func runTickLoop(ctx context.Context, svc *contract.Service, interval time.Duration) {
	log := dsglog.With(dsglog.Fields{"component": "dsgd", "subsystem": "tick"})
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.Tick(ctx); err != nil {
				log.WithError(err).Warn("tick failed")
			}
		}
	}
}
