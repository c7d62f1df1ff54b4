package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundwrap/internal/auth"
	"github.com/desertthunder/soundwrap/internal/repositories"
	"github.com/desertthunder/soundwrap/internal/services"
	"github.com/desertthunder/soundwrap/internal/shared"
	"github.com/desertthunder/soundwrap/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
}

// SetLogger replaces the runner's logger, e.g. to redirect logs to a file
// while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, topCommand, cacheCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// database returns the runner's database handle, opening and migrating the
// configured database on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	return db, nil
}

// flow builds the login flow over the credential repository.
func (r *Runner) flow(db *sql.DB) (*auth.Flow, error) {
	store := repositories.NewCredentialRepository(db)
	return auth.NewFlow(r.config.Credentials.Spotify, store, r.logger)
}

// service resolves the listening data provider and its cache fingerprint.
//
// Demo mode runs against the bundled sample library; otherwise a stored,
// unexpired access token is required.
func (r *Runner) service(db *sql.DB) (services.Service, string, error) {
	if r.config.DemoMode {
		svc, err := services.NewSampleService(r.logger)
		if err != nil {
			return nil, "", err
		}
		return svc, "sample", nil
	}

	flow, err := r.flow(db)
	if err != nil {
		return nil, "", err
	}

	token, err := flow.Token()
	if err != nil {
		return nil, "", err
	}

	svc := services.NewSpotifyService(token, r.config.Fetch, r.logger)
	return svc, shared.TokenFingerprint(token), nil
}

// engine builds a snapshot engine over the resolved service and the
// snapshot cache.
func (r *Runner) engine(db *sql.DB) (tasks.Engine, services.Service, error) {
	svc, fingerprint, err := r.service(db)
	if err != nil {
		return nil, nil, err
	}

	cache := repositories.NewSnapshotRepository(db)
	ttl := time.Duration(r.config.Fetch.CacheTTLMin) * time.Minute

	return tasks.NewSnapshotEngine(svc, cache, fingerprint, ttl, r.logger), svc, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
