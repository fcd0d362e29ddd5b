//go:build sqlite

package telemetry

func DefaultStoreKind() string { return "sqlite" }
