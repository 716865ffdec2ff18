package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/logger"
	"trade-journal-go/internal/models"
)

var rootCmd = &cobra.Command{
	Use:   "journal",
	Short: "Log and analyze trades from the command line",
	Long: `Journal is the command-line companion to the trade journal API.

It provides tools for:
  - Risk-based position sizing before a trade is placed
  - Logging new trades and closing open ones
  - Listing and filtering the journal
  - Aggregate statistics (win rate, P&L, best/worst trades)
  - Exporting filtered trades to CSV`,
}

var (
	cfgPath  string
	username string
)

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "./configs", "directory containing config.yml")
	rootCmd.PersistentFlags().StringVarP(&username, "user", "u", "", "journal owner username")
}

// env bundles the shared dependencies every subcommand needs.
type env struct {
	cfg   config.Config
	log   *zap.Logger
	db    *gorm.DB
	store *journal.Store
}

func newEnv() (*env, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.NewDatabase(&cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := journal.NewStore(db, log, cfg.Charges.Schedule(), cfg.Journal.PsychologyBlocklist)

	return &env{cfg: cfg, log: log, db: db, store: store}, nil
}

// owner resolves the --user flag to an owner id.
func (e *env) owner() (uint, error) {
	if username == "" {
		return 0, errors.New("--user is required")
	}

	var user models.User
	err := e.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("unknown user %q, run 'journal register' first", username)
	}
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}
