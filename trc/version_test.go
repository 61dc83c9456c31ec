// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/mod/semver"
)

func TestVersionIsSemver(t *testing.T) {
	assert.True(t, semver.IsValid(Version), "Version %q", Version)
}

func TestGetInfo(t *testing.T) {
	EnableStats(true)
	t.Cleanup(func() { EnableStats(false) })

	info := GetInfo()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, "v0", info.Major)
	assert.Contains(t, []string{"atomic", "lock"}, info.Backend)
	assert.True(t, info.Stats)
	assert.False(t, info.LeakCheck)
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		v    string
		want bool
	}{
		{Version, true},
		{"v0.0.1", true},
		{"v0.99.0", false},
		{"v1.0.0", false},
		{"0.1.0", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := Compatible(tt.v); got != tt.want {
			t.Errorf("Compatible(%q) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
