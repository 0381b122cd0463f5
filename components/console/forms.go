package console

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Form codes.
const (
	FormOrder   = "order"
	FormClient  = "client"
	FormProduct = "product"
)

// ErrInvalidForm marks input rejected before any network call.
var ErrInvalidForm = errors.New("console: invalid form")

// FormError is a validation failure with the message shown to the user.
type FormError struct {
	Form    string
	Message string
	Err     error
}

func (e *FormError) Error() string {
	return fmt.Sprintf("console: form %s: %s", e.Form, e.Message)
}

func (e *FormError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidForm}
	}
	return []error{ErrInvalidForm, e.Err}
}

var formSchemas = map[string]map[string]any{
	FormOrder: {
		"type":     "object",
		"required": []string{"user_id"},
		"properties": map[string]any{
			"user_id": map[string]any{"type": "integer", "minimum": 1},
			"status": map[string]any{
				"type": "string",
				"enum": []string{"pending", "processing", "shipped", "delivered", "cancelled"},
			},
			"shipping_address": map[string]any{"type": "string"},
			"shipping_city":    map[string]any{"type": "string"},
			"shipping_country": map[string]any{"type": "string"},
		},
	},
	FormClient: {
		"type":     "object",
		"required": []string{"username"},
		"properties": map[string]any{
			"username":   map[string]any{"type": "string", "minLength": 1, "maxLength": 150},
			"email":      map[string]any{"type": "string"},
			"first_name": map[string]any{"type": "string"},
			"last_name":  map[string]any{"type": "string"},
		},
	},
	FormProduct: {
		"type":     "object",
		"required": []string{"name"},
		"properties": map[string]any{
			"name":  map[string]any{"type": "string", "minLength": 1},
			"price": map[string]any{"type": "number", "minimum": 0},
			"stock": map[string]any{"type": "integer", "minimum": 0},
		},
	},
}

var formMessages = map[string]string{
	FormOrder:   "Erreur: Le client est requis",
	FormClient:  "Erreur: L'identifiant est requis",
	FormProduct: "Erreur: Le nom est requis",
}

// FormValidator compiles the form schemas once and validates submissions.
type FormValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewFormValidator builds a validator backed by jsonschema v5.
func NewFormValidator() *FormValidator {
	return &FormValidator{compiled: make(map[string]*jsonschema.Schema)}
}

// Validate checks payload against the schema for form.
func (v *FormValidator) Validate(form string, payload map[string]any) error {
	schema, err := v.schemaFor(form)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("console: marshal form %s: %w", form, err)
	}
	var normalized map[string]any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return fmt.Errorf("console: normalize form %s: %w", form, err)
	}
	if normalized == nil {
		normalized = map[string]any{}
	}
	if err := schema.Validate(normalized); err != nil {
		return &FormError{Form: form, Message: formMessages[form], Err: err}
	}
	return nil
}

func (v *FormValidator) schemaFor(form string) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[form]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	raw, ok := formSchemas[form]
	if !ok {
		return nil, fmt.Errorf("console: unknown form %q", form)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("console: marshal schema %s: %w", form, err)
	}
	compiler := jsonschema.NewCompiler()
	name := form + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("console: load schema %s: %w", form, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("console: compile schema %s: %w", form, err)
	}
	v.mu.Lock()
	v.compiled[form] = compiled
	v.mu.Unlock()
	return compiled, nil
}

// FormValues are raw submitted field values.
type FormValues map[string]string

func (f FormValues) get(key string) string {
	return strings.TrimSpace(f[key])
}

// OrderPayload converts submitted values into the schema-shaped payload.
// Non-numeric ids are kept as strings so validation rejects them.
func (f FormValues) OrderPayload() map[string]any {
	payload := map[string]any{}
	if raw := f.get("user_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			payload["user_id"] = id
		} else {
			payload["user_id"] = raw
		}
	}
	for _, key := range []string{"status", "shipping_address", "shipping_city", "shipping_country"} {
		if value := f.get(key); value != "" {
			payload[key] = value
		}
	}
	return payload
}

// ClientPayload converts submitted values into the schema-shaped payload.
func (f FormValues) ClientPayload() map[string]any {
	payload := map[string]any{}
	for _, key := range []string{"username", "email", "first_name", "last_name"} {
		if value := f.get(key); value != "" {
			payload[key] = value
		}
	}
	return payload
}

// ProductPayload converts submitted values into the schema-shaped payload.
func (f FormValues) ProductPayload() map[string]any {
	payload := map[string]any{}
	if name := f.get("name"); name != "" {
		payload["name"] = name
	}
	if raw := f.get("price"); raw != "" {
		if price, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64); err == nil {
			payload["price"] = price
		} else {
			payload["price"] = raw
		}
	}
	if raw := f.get("stock"); raw != "" {
		if stock, err := strconv.Atoi(raw); err == nil {
			payload["stock"] = stock
		} else {
			payload["stock"] = raw
		}
	}
	return payload
}
