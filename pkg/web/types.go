// Package web provides HTTP request and response types for the SDS protocol API.
package web

import "github.com/dukex/sdsprotocol/pkg/models"

// LocationsRequest carries the ordered candidates to assign to a protocol.
type LocationsRequest struct {
	Locations []any `json:"locations" validate:"required"`
}

// SaveStepRequest represents the request body for saving a step configuration.
// PreviousIdentifier defaults to the identifier in the URL; set it to rename a step.
type SaveStepRequest struct {
	ProtocolName       string `json:"protocol_name"                 validate:"required"`
	PreviousIdentifier string `json:"previous_identifier,omitempty" validate:"omitempty,excludesall=/\\"`
}

// MatchResponse is the outcome of a successful match.
type MatchResponse struct {
	Protocol   *models.Protocol  `json:"protocol"`
	Assignment models.Assignment `json:"assignment"`
}

// ProtocolSummary represents the filtered response for a catalog entry.
type ProtocolSummary struct {
	ID        string `json:"id"`
	Version   string `json:"version"`
	Name      string `json:"name"`
	Kind      string `json:"kind,omitempty"`
	Info      string `json:"info"`
	Inputs    int    `json:"inputs"`
	Supported bool   `json:"supported"`
}

// NodeTypeResponse describes a registered node factory.
type NodeTypeResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}
