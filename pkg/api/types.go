package api

import (
	"context"

	"github.com/recordgate/recordgate/pkg/engine"
	"github.com/recordgate/recordgate/pkg/message"
)

// APIResponse represents a standard API response envelope for non-record
// endpoints (health, errors).
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
}

// RecordService defines the record operations the handlers drive. The engine
// satisfies it; tests substitute fakes.
type RecordService interface {
	Create(ctx context.Context, req *message.Message, opts engine.Options) (*message.Message, error)
	Read(ctx context.Context, id string, opts engine.Options) (*message.Message, error)
	Update(ctx context.Context, req *message.Message, opts engine.Options) (*message.Message, error)
	Delete(ctx context.Context, req *message.Message, opts engine.Options) (*message.Message, error)
	RunScript(ctx context.Context, script, param string, opts engine.Options) (*message.Message, error)
}
