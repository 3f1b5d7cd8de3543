package httpapi

import (
	"fmt"

	"github.com/raglite/raglite/internal/core/ports/driving"
)

// Ports holds the driving-port implementations the HTTP API exposes.
type Ports struct {
	Chat    driving.ChatService
	Ingest  driving.IngestService
	Library driving.LibraryService
}

// Validate checks that all required ports are present.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return fmt.Errorf("chat service is required")
	}
	if p.Ingest == nil {
		return fmt.Errorf("ingest service is required")
	}
	if p.Library == nil {
		return fmt.Errorf("library service is required")
	}
	return nil
}
