// Package objectkey generates the object store keys used for uploaded files.
package objectkey

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Generator defines the interface for object key generation strategies.
// Keys must be collision-resistant without any store round-trip.
type Generator interface {
	// GenerateKey creates a fresh object key for the given original filename.
	GenerateKey(fileName string) string
}

// UUIDGenerator produces keys of the form "<uuid>_file<ext>", where ext is
// the lowercased extension of the original filename. Random identifier plus
// original extension keeps keys short and collision-proof.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) GenerateKey(fileName string) string {
	return fmt.Sprintf("%s_file%s", uuid.New(), strings.ToLower(filepath.Ext(fileName)))
}

// CustomFuncGenerator allows callers to provide their own key generation
// function, e.g. a deterministic one in tests.
type CustomFuncGenerator struct {
	GenerateFunc func(fileName string) string
}

func NewCustomFuncGenerator(fn func(fileName string) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{GenerateFunc: fn}
}

func (g *CustomFuncGenerator) GenerateKey(fileName string) string {
	return g.GenerateFunc(fileName)
}
