//go:build tools

package main

// Build-time tool dependencies, kept versioned through go.mod.
import (
	_ "github.com/golang/mock/mockgen"
)
