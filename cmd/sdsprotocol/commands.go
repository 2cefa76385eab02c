package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dukex/sdsprotocol/pkg/cmd"
	"github.com/dukex/sdsprotocol/pkg/config"
	"github.com/dukex/sdsprotocol/pkg/eventbus"
	"github.com/dukex/sdsprotocol/pkg/events"
	"github.com/dukex/sdsprotocol/pkg/log"
	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/dukex/sdsprotocol/pkg/otelhelper"
	"github.com/dukex/sdsprotocol/pkg/persistence"
	"github.com/dukex/sdsprotocol/pkg/protocols"
	"github.com/dukex/sdsprotocol/pkg/services"
	"github.com/dukex/sdsprotocol/pkg/workflow"
	"github.com/urfave/cli/v3"
)

var errMissingArgument = errors.New("missing argument")

// setup configures logging from the global flags and returns a logger scoped to module.
func setup(command *cli.Command, module string) *slog.Logger {
	log.SetupWithFormat(command.String("log-level"), log.Format(command.String("log-format")))

	return log.WithModule(module)
}

func output(command *cli.Command) io.Writer {
	if w := command.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

func printJSON(command *cli.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	_, err = fmt.Fprintln(output(command), string(data))

	return err
}

func ListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List the available protocols",
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := setup(command, "cli")
			catalog := cmd.NewCatalog(logger)

			for _, p := range catalog.All() {
				if _, err := fmt.Fprintf(output(command), "%s\t%s\t%s\n", p.Name, p.Version, p.Kind); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func DescribeCommand() *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Usage:     "Print the markdown description of a protocol",
		ArgsUsage: "NAME",
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := setup(command, "cli")

			name := command.Args().First()
			if name == "" {
				return fmt.Errorf("%w: protocol name", errMissingArgument)
			}

			p, ok := cmd.NewCatalog(logger).GetByName(name)
			if !ok {
				return fmt.Errorf("protocol %q not found", name)
			}

			_, err := fmt.Fprintln(output(command), protocols.Describe(p))

			return err
		},
	}
}

func MatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "match",
		Usage:     "Assign artifacts to the inputs of a protocol and print the result",
		ArgsUsage: "ARTIFACT... (prefix a JSON file with @ to pass its object as a dict)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "protocol",
				Aliases:  []string{"p"},
				Usage:    "Name of the protocol to populate",
				Required: true,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := setup(command, "cli")
			catalog := cmd.NewCatalog(logger)

			p, ok := catalog.GetByName(command.String("protocol"))
			if !ok {
				return fmt.Errorf("protocol %q not found", command.String("protocol"))
			}

			candidates, err := ParseCandidates(command.Args().Slice())
			if err != nil {
				return err
			}

			assignment, err := catalog.Match(p, candidates)
			if err != nil {
				return fmt.Errorf("protocol not populated: %w", err)
			}

			return printJSON(command, p.WithAssignment(assignment))
		},
	}
}

// stepRuntime bundles what the step subcommands need.
type stepRuntime struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	service     *services.Step
	executor    *workflow.Executor
}

func newStepRuntime(command *cli.Command) *stepRuntime {
	logger := setup(command, "cli")
	catalog := cmd.NewCatalog(logger)
	p := cmd.NewPersistence(command.String("store"))
	reg := cmd.NewRegistry(logger, catalog, command.String("plugins-path"))

	return &stepRuntime{
		logger:      logger,
		persistence: p,
		service:     services.NewStep(p, catalog, nil, logger),
		executor:    workflow.NewExecutor(reg, p.StepRepository(), nil, logger),
	}
}

func (r *stepRuntime) close(ctx context.Context) {
	if err := r.persistence.Close(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
	}
}

func StepCommand() *cli.Command {
	return &cli.Command{
		Name:    "step",
		Aliases: []string{"s"},
		Usage:   "Manage SDS protocol step configurations",
		Commands: []*cli.Command{
			{
				Name:  "save",
				Usage: "Validate and save a step configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "identifier",
						Aliases:  []string{"id"},
						Usage:    "Workflow-unique identifier of the step",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "protocol",
						Aliases: []string{"p"},
						Usage:   "Name of the protocol the step populates",
						Value:   models.UnconfiguredProtocol,
					},
					&cli.StringFlag{
						Name:  "previous",
						Usage: "Identifier the step was saved under before, when renaming",
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					rt := newStepRuntime(command)
					defer rt.close(ctx)

					identifier := command.String("identifier")

					previous := command.String("previous")
					if previous == "" {
						previous = identifier
					}

					saved, err := rt.service.Save(ctx, previous, models.StepConfig{
						Identifier:   identifier,
						ProtocolName: command.String("protocol"),
					})
					if err != nil {
						return err
					}

					return printJSON(command, saved)
				},
			},
			{
				Name:      "import",
				Usage:     "Save every step declared in a YAML file",
				ArgsUsage: "FILE",
				Action: func(ctx context.Context, command *cli.Command) error {
					path := command.Args().First()
					if path == "" {
						return fmt.Errorf("%w: steps file", errMissingArgument)
					}

					rt := newStepRuntime(command)
					defer rt.close(ctx)

					configs, err := config.LoadStepConfigs(path)
					if err != nil {
						return err
					}

					for _, cfg := range configs {
						if _, err := rt.service.Save(ctx, cfg.Identifier, cfg); err != nil {
							return fmt.Errorf("failed to import step %q: %w", cfg.Identifier, err)
						}
					}

					rt.logger.InfoContext(ctx, "Imported steps", "count", len(configs), "file", path)

					return nil
				},
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List the saved steps",
				Action: func(ctx context.Context, command *cli.Command) error {
					rt := newStepRuntime(command)
					defer rt.close(ctx)

					steps, err := rt.service.List(ctx)
					if err != nil {
						return err
					}

					for _, s := range steps {
						if _, err := fmt.Fprintf(output(command), "%s\t%s\n", s.Identifier, s.ProtocolName); err != nil {
							return err
						}
					}

					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved step",
				ArgsUsage: "IDENTIFIER",
				Action: func(ctx context.Context, command *cli.Command) error {
					identifier := command.Args().First()
					if identifier == "" {
						return fmt.Errorf("%w: step identifier", errMissingArgument)
					}

					rt := newStepRuntime(command)
					defer rt.close(ctx)

					return rt.service.Delete(ctx, identifier)
				},
			},
			{
				Name:      "run",
				Aliases:   []string{"r"},
				Usage:     "Run a saved step against artifacts and print the populated protocol",
				ArgsUsage: "IDENTIFIER ARTIFACT...",
				Action: func(ctx context.Context, command *cli.Command) error {
					args := command.Args().Slice()
					if len(args) == 0 {
						return fmt.Errorf("%w: step identifier", errMissingArgument)
					}

					candidates, err := ParseCandidates(args[1:])
					if err != nil {
						return err
					}

					rt := newStepRuntime(command)
					defer rt.close(ctx)

					result, err := rt.executor.Execute(ctx, args[0], candidates)
					if err != nil {
						return err
					}

					return printJSON(command, result)
				},
			},
		},
	}
}

func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export step execution traces over OTLP/HTTP",
				Value:   false,
				Sources: cli.EnvVars("OTEL_TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := setup(command, "api")

			logger.InfoContext(ctx, "Initializing SDS protocol API")

			if command.Bool("tracing") {
				if _, err := otelhelper.NewTracer(ctx, "sdsprotocol"); err != nil {
					return fmt.Errorf("failed to set up tracing: %w", err)
				}
			}

			catalog := cmd.NewCatalog(logger)
			registry := cmd.NewRegistry(logger, catalog, command.String("plugins-path"))
			persistence := cmd.NewPersistence(command.String("store"))

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			if err := subscribeEventLog(ctx, eventBus, logger); err != nil {
				return err
			}

			api := NewAPI(logger, catalog, persistence, registry, eventBus)

			return api.Start(command.Int("port"))
		},
	}
}

// subscribeEventLog logs every step and protocol event published on bus.
func subscribeEventLog(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) error {
	handler := func(_ context.Context, event any) error {
		e, ok := event.(eventbus.Event)
		if !ok {
			return fmt.Errorf("unexpected event %T", event)
		}

		logger.Info("Event received", "event_type", e.GetType())

		return nil
	}

	for _, eventType := range []events.EventType{
		events.StepConfiguredEvent,
		events.StepDeletedEvent,
		events.ProtocolPopulatedEvent,
		events.ProtocolRejectedEvent,
	} {
		if err := bus.Handle(eventType, handler); err != nil {
			return err
		}
	}

	return bus.Subscribe(ctx)
}
