package dsgconfig

import (
	"testing"
	"time"
)

func TestDefaultConfigMatchesSpecDefaults(t *testing.T) {
	c := DefaultConfig()
	cases := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"AtomicInterval", c.AtomicInterval, 60 * time.Second},
		{"InitialChallengeLiveTime", c.InitialChallengeLiveTime, 24 * time.Hour},
		{"StoreChallengeLiveTime", c.StoreChallengeLiveTime, 1 * time.Hour},
		{"ChallengeInterval", c.ChallengeInterval, 24 * time.Hour},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s = %v, want %v", tc.name, tc.got, tc.want)
		}
	}
	if c.AESBlockSize != 16 {
		t.Errorf("AESBlockSize = %d, want 16", c.AESBlockSize)
	}
}
