package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/partmatch/internal/catalog"
	"github.com/lehigh-university-libraries/partmatch/internal/metadata"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "partmatch",
		Short: "Score whether one electronic part can substitute for another",
		Long: `Partmatch compares the extracted specifications of an original part and a
candidate replacement and reports a compatibility score between 0 and 1.

Each component type declares which attributes matter, how important they are,
and the tolerance rule for each one. A candidate that fails any critical
attribute scores 0.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			logLevel := slog.LevelInfo
			if verbose {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
			slog.SetDefault(logger)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newScoreCmd())
	cmd.AddCommand(newTypesCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}

// catalogFlags are shared by commands that load a component catalog.
type catalogFlags struct {
	profile string
	path    string
}

func (f *catalogFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.profile, "profile", "", "Scoring profile: replacement-strict or design-phase-loose (env PARTMATCH_PROFILE)")
	cmd.Flags().StringVar(&f.path, "types", "", "Path to a component type catalog YAML (env PARTMATCH_TYPES)")
}

// resolve applies environment defaults; flags win over the environment.
func (f *catalogFlags) resolve() (metadata.Profile, string, error) {
	raw := f.profile
	if raw == "" {
		raw = os.Getenv("PARTMATCH_PROFILE")
	}
	path := f.path
	if path == "" {
		path = os.Getenv("PARTMATCH_TYPES")
	}
	profile, err := metadata.ParseProfile(raw)
	return profile, path, err
}

func (f *catalogFlags) load() (*metadata.Registry, error) {
	profile, path, err := f.resolve()
	if err != nil {
		return nil, err
	}
	return catalog.Load(profile, path)
}
