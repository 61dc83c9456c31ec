// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trc

import (
	"golang.org/x/mod/semver"

	"github.com/kolkov/trc/internal/refcount"
	"github.com/kolkov/trc/internal/stats"
)

// Version is the semantic version of this package.
const Version = "v0.1.0"

// Info describes the compiled-in configuration and active diagnostics.
type Info struct {
	// Version is the package version, e.g. "v0.1.0".
	Version string

	// Major is the major version, e.g. "v0".
	Major string

	// Backend is the shared counter implementation: "atomic" or "lock".
	Backend string

	// Stats reports whether EnableStats is on.
	Stats bool

	// ConfinementCheck reports whether EnableConfinementCheck is on.
	ConfinementCheck bool

	// LeakCheck reports whether EnableLeakCheck is on.
	LeakCheck bool
}

// GetInfo returns information about the trc runtime.
//
// Example:
//
//	info := trc.GetInfo()
//	fmt.Printf("trc %s (%s counters)\n", info.Version, info.Backend)
func GetInfo() Info {
	return Info{
		Version:          Version,
		Major:            semver.Major(Version),
		Backend:          refcount.Backend,
		Stats:            stats.Enabled(),
		ConfinementCheck: confinement.Load(),
		LeakCheck:        leakCheck.Load(),
	}
}

// Compatible reports whether code written against version v can use this
// package: v must be valid semver with the same major version and not
// newer than Version.
func Compatible(v string) bool {
	if !semver.IsValid(v) {
		return false
	}
	return semver.Major(v) == semver.Major(Version) && semver.Compare(v, Version) <= 0
}
