// Package dsgconfig centralizes the DSG service's tunables behind a
// single Config/DefaultConfig pair, the way the teacher's pkg/constants
// package exposes Beenet's protocol constants.
package dsgconfig

import "time"

// Config holds every timeout and size knob named in spec.md §5 and §4.4.
type Config struct {
	// AtomicInterval bounds tick granularity and re-post cadence.
	AtomicInterval time.Duration

	// InitialChallengeLiveTime bounds the gap between "prepared" and
	// "proof received" before a contract is declared broken.
	InitialChallengeLiveTime time.Duration

	// StoreChallengeLiveTime applies to maintenance (heartbeat) challenges.
	StoreChallengeLiveTime time.Duration

	// ChallengeInterval is the cadence for maintenance challenges once a
	// contract reaches DataSourceStored.
	ChallengeInterval time.Duration

	// SplitSize is the stored-chunk size the merge transform targets
	// (spec.md §4.4 "split").
	SplitSize uint32

	// AESKeySize is the AES-CBC key size in bytes for Backup storage.
	AESKeySize int

	// AESBlockSize is the CBC block size stored-chunk headers are
	// zero-padded to (spec.md §4.4: "enc_block (=16)").
	AESBlockSize int

	// SampleCount and SampleLen are the default challenge sampling
	// parameters (spec.md §4.5).
	SampleCount int
	SampleLen   uint32
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		AtomicInterval:           60 * time.Second,
		InitialChallengeLiveTime: 24 * time.Hour,
		StoreChallengeLiveTime:   1 * time.Hour,
		ChallengeInterval:        24 * time.Hour,
		SplitSize:                4 << 20, // 4 MiB
		AESKeySize:               32,       // AES-256
		AESBlockSize:             16,
		SampleCount:              8,
		SampleLen:                4096,
	}
}
