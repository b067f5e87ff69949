package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pricepoint-backend/internal/client"
	"pricepoint-backend/internal/config"
	"pricepoint-backend/internal/logger"
	"pricepoint-backend/internal/session"
	"pricepoint-backend/internal/store"
)

// cli — общее состояние команд одного запуска
type cli struct {
	// флаги
	cfgPath string
	apiBase string
	localDB string
	offline bool
	verbose bool

	cfg   *config.Config
	log   *zap.Logger
	local *store.Store
	sess  *session.Session
	repo  *client.Repository
}

// newRootCmd собирает дерево команд; c.close() вызывает тот, кто запускает Execute
func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	root := &cobra.Command{
		Use:   "pricepoint",
		Short: "PricePoint - product configuration and quoting",
		Long: `pricepoint configures cloud services, keeps a cart and turns it into quotes.

The persona (PUBLIC, PRESALES, SALES_MANAGER, SALES_ADMIN) and the cart are kept
in a local SQLite file between runs. When the backend is not reachable, the
static catalog is used and quotes are saved locally as QT-LOC-NNNN.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	f := root.PersistentFlags()
	f.StringVar(&c.cfgPath, "config", os.Getenv("PRICEPOINT_CONFIG"), "path to config file (yaml)")
	f.StringVar(&c.apiBase, "api", "", "backend URL (overrides client.api_base)")
	f.StringVar(&c.localDB, "local-db", "", "local SQLite file (overrides client.local_db)")
	f.BoolVar(&c.offline, "offline", false, "do not contact the backend")
	f.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newProductsCmd(c),
		newConfigureCmd(c),
		newCartCmd(c),
		newQuoteCmd(c),
		newAdminCmd(c),
	)
	return root, c
}

// setup читает конфиг, открывает локальную базу и сессию.
// Бэкенд опрашивается лениво, в repository().
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.cfgPath)
	if err != nil {
		return err
	}
	if c.apiBase != "" {
		cfg.Client.APIBase = c.apiBase
	}
	if c.localDB != "" {
		cfg.Client.LocalDB = c.localDB
	}
	c.cfg = cfg

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	if err := logger.Init(level, "text"); err != nil {
		return err
	}
	c.log = logger.Named("cli")

	ctx := cmd.Context()
	c.local, err = store.Open(ctx, store.DriverSQLite, cfg.Client.LocalDB)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	c.sess, err = session.Load(ctx, c.local, c.log.Named("session"))
	if err != nil {
		return err
	}
	return nil
}

// close закрывает локальную базу; повторный вызов ничего не делает.
// Вызывается и после ошибки команды.
func (c *cli) close() error {
	_ = logger.Sync()
	if c.local == nil {
		return nil
	}
	err := c.local.Close()
	c.local = nil
	return err
}

// repository подключается к бэкенду (или переходит в локальный режим)
func (c *cli) repository(ctx context.Context) *client.Repository {
	if c.repo != nil {
		return c.repo
	}
	var api *client.API
	if !c.offline {
		api = client.NewAPI(c.cfg.Client.APIBase, c.cfg.Client.GetTimeout())
	}
	c.repo = client.NewRepository(api, c.local, c.cfg.Pricing.Calculator(), c.cfg.Client.GetTimeout(), c.log.Named("repo"))
	c.repo.Init(ctx, c.sess.Persona())
	return c.repo
}

func (c *cli) mode() string {
	if c.repo != nil && c.repo.BackendActive() {
		return "online"
	}
	return "offline"
}

// printNotifications — уведомления, появившиеся за этот запуск
func (c *cli) printNotifications(w io.Writer) {
	if c.repo == nil {
		return
	}
	for _, n := range c.repo.Notifications() {
		fmt.Fprintln(w, "»", n)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
