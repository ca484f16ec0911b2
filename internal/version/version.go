// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Map view, texture cache, headless summary and JSON snapshot
// 0.2.0 - Editor ZIP import (planet, system, galaxy), orbital groups
// 0.1.0 - Initial release: chase view, procedural sectors, landing
