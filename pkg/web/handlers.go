// Package web provides HTTP handlers and REST API endpoints for SDS protocols and steps.
package web

import (
	"net/http"
	"time"

	"github.com/dukex/sdsprotocol/pkg/matcher"
	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/dukex/sdsprotocol/pkg/protocols"
	"github.com/dukex/sdsprotocol/pkg/registry"
	"github.com/dukex/sdsprotocol/pkg/services"
	"github.com/dukex/sdsprotocol/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	catalog     *protocols.Registry
	stepService *services.Step
	executor    *workflow.Executor
	validator   *validator.Validate
	registry    *registry.Registry
}

func NewAPIHandlers(
	catalog *protocols.Registry,
	stepService *services.Step,
	executor *workflow.Executor,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		catalog:     catalog,
		stepService: stepService,
		executor:    executor,
		validator:   validator,
		registry:    registry,
	}
}

// RegisterRoutes mounts every API endpoint on router.
func RegisterRoutes(router fiber.Router, h *APIHandlers) {
	p := router.Group("/protocols")
	p.Get("/", h.GetProtocols)
	p.Get("/:name", h.GetProtocol)
	p.Get("/:name/describe", h.DescribeProtocol)
	p.Post("/:name/match", h.MatchProtocol)

	s := router.Group("/steps")
	s.Get("/", h.GetSteps)
	s.Get("/:identifier", h.GetStep)
	s.Put("/:identifier", h.SaveStep)
	s.Delete("/:identifier", h.DeleteStep)
	s.Post("/:identifier/execute", h.ExecuteStep)

	router.Get("/nodes", h.GetNodeTypes)
	router.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck(c.Context())
	repositoryCheck, repOk := h.stepService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "SDS protocol API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "SDS protocol API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetProtocols(c fiber.Ctx) error {
	all := h.catalog.All()

	summaries := make([]ProtocolSummary, 0, len(all))
	for _, p := range all {
		summaries = append(summaries, ProtocolSummary{
			ID:        p.ID,
			Version:   p.Version,
			Name:      p.Name,
			Kind:      p.Kind,
			Info:      p.Info,
			Inputs:    len(p.Inputs),
			Supported: h.catalog.Supports(p.Name),
		})
	}

	return c.JSON(fiber.Map{
		"protocols":   summaries,
		"total_count": len(summaries),
	})
}

func (h *APIHandlers) GetProtocol(c fiber.Ctx) error {
	p, ok := h.catalog.GetByName(c.Params("name"))
	if !ok {
		return notFound(c, "Protocol not found")
	}

	return c.JSON(p)
}

func (h *APIHandlers) DescribeProtocol(c fiber.Ctx) error {
	p, ok := h.catalog.GetByName(c.Params("name"))
	if !ok {
		return notFound(c, "Protocol not found")
	}

	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")

	return c.SendString(protocols.Describe(p))
}

func (h *APIHandlers) MatchProtocol(c fiber.Ctx) error {
	p, ok := h.catalog.GetByName(c.Params("name"))
	if !ok {
		return notFound(c, "Protocol not found")
	}

	var req LocationsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	assignment, err := h.catalog.Match(p, req.Locations)
	if err != nil {
		if matcher.IsRejection(err) {
			return matchRejected(c, err)
		}

		return internalError(c, err)
	}

	return c.JSON(MatchResponse{
		Protocol:   p.WithAssignment(assignment),
		Assignment: assignment,
	})
}

func (h *APIHandlers) GetSteps(c fiber.Ctx) error {
	steps, err := h.stepService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"steps":       steps,
		"total_count": len(steps),
	})
}

func (h *APIHandlers) GetStep(c fiber.Ctx) error {
	step, err := h.stepService.Get(c.Context(), c.Params("identifier"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(step)
}

func (h *APIHandlers) SaveStep(c fiber.Ctx) error {
	identifier := c.Params("identifier")

	var req SaveStepRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	previous := req.PreviousIdentifier
	if previous == "" {
		previous = identifier
	}

	saved, err := h.stepService.Save(c.Context(), previous, models.StepConfig{
		Identifier:   identifier,
		ProtocolName: req.ProtocolName,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(saved)
}

func (h *APIHandlers) DeleteStep(c fiber.Ctx) error {
	if err := h.stepService.Delete(c.Context(), c.Params("identifier")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ExecuteStep(c fiber.Ctx) error {
	var req LocationsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	result, err := h.executor.Execute(c.Context(), c.Params("identifier"), req.Locations)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	factories := h.registry.GetAvailableNodes()

	nodes := make([]NodeTypeResponse, 0, len(factories))
	for _, f := range factories {
		nodes = append(nodes, NodeTypeResponse{
			ID:          f.ID(),
			Name:        f.Name(),
			Description: f.Description(),
			Schema:      f.Schema(),
		})
	}

	return c.JSON(nodes)
}
