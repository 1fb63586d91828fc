// Package provider implements AI translation backends.
package provider

import "github.com/ZaguanLabs/loom"

// Aliases into the root package, so code wiring a provider needs only
// this import.
type (
	AIProvider       = loom.AIProvider
	TranslateRequest = loom.TranslateRequest
)
