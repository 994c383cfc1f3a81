// Package fonts centralizes the typography of exported artifacts.
//
// Mindgrid ships no font binaries. Deployments that want a self-contained
// face in standalone SVGs register WOFF data at startup, typically from a
// file embedded in their own build; everything else falls back to faces the
// viewer already has.
package fonts

import (
	"encoding/base64"
	"sync"
)

const (
	// FontFamily is the family name a registered face is declared under.
	FontFamily = "Mindgrid Script"

	// FallbackFontFamily approximates the editor's look with faces most
	// systems carry.
	FallbackFontFamily = `'Segoe Print', 'Bradley Hand', 'Comic Sans MS', cursive`
)

var (
	mu         sync.Mutex
	woff       []byte
	woffBase64 string
)

// RegisterWOFF installs WOFF data for embedding into SVG exports. Passing
// nil removes a previously registered face.
func RegisterWOFF(data []byte) {
	mu.Lock()
	defer mu.Unlock()
	woff = data
	woffBase64 = ""
}

// WOFF returns the registered font data, or nil when none is registered.
func WOFF() []byte {
	mu.Lock()
	defer mu.Unlock()
	return woff
}

// WOFFBase64 returns the registered font as base64 for a data URI, or ""
// when no face is registered. The encoding is computed once per
// registration.
func WOFFBase64() string {
	mu.Lock()
	defer mu.Unlock()
	if woff != nil && woffBase64 == "" {
		woffBase64 = base64.StdEncoding.EncodeToString(woff)
	}
	return woffBase64
}

// Stack returns the font-family value for SVG text: the registered face
// first when one is present, then the fallbacks.
func Stack() string {
	mu.Lock()
	registered := woff != nil
	mu.Unlock()
	if !registered {
		return FallbackFontFamily
	}
	return "'" + FontFamily + "', " + FallbackFontFamily
}
