package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Message))
	}
	return b.String()
}

// Validate validates the complete configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	if err := c.validateBackend(); err != nil {
		errs = append(errs, err...)
	}
	if err := c.validateLLM(); err != nil {
		errs = append(errs, err...)
	}
	if err := c.validateLimits(); err != nil {
		errs = append(errs, err...)
	}
	if err := c.validateSession(); err != nil {
		errs = append(errs, err...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateBackend validates search backend configuration
func (c *Config) validateBackend() ValidationErrors {
	var errs ValidationErrors

	if c.Backend.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "backend.provider",
			Message: "backend provider is required",
		})
		return errs
	}

	switch strings.ToLower(c.Backend.Provider) {
	case "elastic":
		if c.Backend.Endpoint == "" {
			errs = append(errs, ValidationError{
				Field:   "backend.endpoint",
				Message: "backend endpoint is required for elastic provider",
			})
		}
	case "milvus":
		if c.Backend.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "backend.host",
				Message: "backend host is required for milvus provider",
			})
		}
		if c.Embedding.Model == "" {
			errs = append(errs, ValidationError{
				Field:   "embedding.model",
				Message: "embedding model is required for milvus provider",
			})
		}
		if c.Embedding.Dimensions <= 0 {
			errs = append(errs, ValidationError{
				Field:   "embedding.dimensions",
				Message: fmt.Sprintf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions),
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "backend.provider",
			Message: fmt.Sprintf("unknown backend provider %q (expected elastic or milvus)", c.Backend.Provider),
		})
	}

	if c.Backend.MetadataIndex == "" {
		errs = append(errs, ValidationError{
			Field:   "backend.metadata_index",
			Message: "metadata index name is required",
		})
	}
	if c.Backend.ChunksIndex == "" {
		errs = append(errs, ValidationError{
			Field:   "backend.chunks_index",
			Message: "chunks index name is required",
		})
	}

	return errs
}

// validateLLM validates language model configuration
func (c *Config) validateLLM() ValidationErrors {
	var errs ValidationErrors

	if c.LLM.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "llm.model",
			Message: "llm model is required",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "llm.temperature",
			Message: fmt.Sprintf("llm.temperature must be in [0, 2], got %.2f", c.LLM.Temperature),
		})
	}

	if c.LLM.MaxTokens < 0 {
		errs = append(errs, ValidationError{
			Field:   "llm.max_tokens",
			Message: fmt.Sprintf("llm.max_tokens must be non-negative, got %d", c.LLM.MaxTokens),
		})
	}

	return errs
}

// validateLimits validates pipeline limits
func (c *Config) validateLimits() ValidationErrors {
	var errs ValidationErrors

	if c.Limits.MetadataLimit <= 0 {
		errs = append(errs, ValidationError{
			Field:   "limits.metadata_limit",
			Message: fmt.Sprintf("limits.metadata_limit must be positive, got %d", c.Limits.MetadataLimit),
		})
	}
	if c.Limits.ChunkLimit <= 0 || c.Limits.ChunkLimit > 20 {
		errs = append(errs, ValidationError{
			Field:   "limits.chunk_limit",
			Message: fmt.Sprintf("limits.chunk_limit must be in [1, 20], got %d", c.Limits.ChunkLimit),
		})
	}
	if c.Limits.FilterCap <= 0 {
		errs = append(errs, ValidationError{
			Field:   "limits.filter_cap",
			Message: fmt.Sprintf("limits.filter_cap must be positive, got %d", c.Limits.FilterCap),
		})
	}
	if c.Limits.MaxEntities <= 0 {
		errs = append(errs, ValidationError{
			Field:   "limits.max_entities",
			Message: fmt.Sprintf("limits.max_entities must be positive, got %d", c.Limits.MaxEntities),
		})
	}
	if c.Limits.HistoryTurns < 0 || c.Limits.HistoryTurns > 10 {
		errs = append(errs, ValidationError{
			Field:   "limits.history_turns",
			Message: fmt.Sprintf("limits.history_turns must be in [0, 10], got %d", c.Limits.HistoryTurns),
		})
	}
	if c.Limits.MaxContextTokens <= 0 {
		errs = append(errs, ValidationError{
			Field:   "limits.max_context_tokens",
			Message: fmt.Sprintf("limits.max_context_tokens must be positive, got %d", c.Limits.MaxContextTokens),
		})
	}

	return errs
}

// validateSession validates session store configuration
func (c *Config) validateSession() ValidationErrors {
	var errs ValidationErrors

	switch strings.ToLower(c.Session.Store) {
	case "", "memory":
	case "redis":
		if c.Session.RedisAddr == "" {
			errs = append(errs, ValidationError{
				Field:   "session.redis_addr",
				Message: "redis address is required for redis session store",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "session.store",
			Message: fmt.Sprintf("unknown session store %q (expected memory or redis)", c.Session.Store),
		})
	}

	return errs
}
