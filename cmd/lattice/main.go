// lattice - external merge sorter and cost-aware query planner
// Main entry point for the command-line tool.

package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/latticedb/lattice/internal/cli"
	"github.com/latticedb/lattice/internal/config"
	"github.com/latticedb/lattice/internal/logger"
	"github.com/latticedb/lattice/pkg/ast"
	"github.com/latticedb/lattice/pkg/auth"
	"github.com/latticedb/lattice/pkg/catalog"
	"github.com/latticedb/lattice/pkg/planner"
	"github.com/spf13/cobra"
)

var (
	version   = "0.1.0"
	buildDate = "dev"
	cfgFile   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lattice",
		Short: "lattice - external merge sort and query planner toolkit",
		Long: `lattice hosts two hard-engineering subsystems of a relational
database engine: a bounded-memory external merge sorter and a cost-aware
query planner.

Start the interactive shell:
  lattice

Start with a specific config file:
  lattice --config /path/to/config.yaml`,
		Run: runREPL,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lattice %s (built %s)\n", version, buildDate)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new data directory",
		Args:  cobra.MaximumNArgs(1),
		Run:   initDataDir,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "plan",
		Short: "Plan a canned demo query and print its operator tree",
		Long: `plan builds a small in-memory catalog, runs the query planner
on a fixed demonstration query, and prints the resulting Plan tree via
Explain(). It requires authenticating against the configured data
directory's user catalog first, the same pre-flight check the REPL
performs before accepting a query.`,
		Run: runPlanDemo,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runREPL(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting lattice",
		"version", version,
		"data_dir", cfg.Storage.DataDir,
	)

	if err := config.ValidateDataDir(cfg.Storage.DataDir); err != nil {
		log.Error("data directory validation failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'lattice init' to create a new data directory\n")
		os.Exit(1)
	}

	cat, err := catalog.NewCatalog(cfg.Storage.DataDir)
	if err != nil {
		log.Error("failed to open catalog", "error", err)
		os.Exit(1)
	}

	users, err := auth.NewUserCatalog(cfg.Storage.DataDir)
	if err != nil {
		log.Error("failed to open user catalog", "error", err)
		os.Exit(1)
	}

	repl := cli.NewREPL(cfg, log, cat, users)
	if err := repl.Run(); err != nil {
		log.Error("REPL error", "error", err)
		os.Exit(1)
	}
}

func initDataDir(cmd *cobra.Command, args []string) {
	dir := "./data"
	if len(args) > 0 {
		dir = args[0]
	}

	fmt.Printf("Initializing new lattice data directory in: %s\n", dir)

	if err := config.InitDataDir(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfgPath := "lattice.yaml"
	if err := config.CreateDefaultConfig(cfgPath, dir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create config file: %v\n", err)
	} else {
		fmt.Printf("Created config file: %s\n", cfgPath)
	}

	if _, err := auth.NewUserCatalog(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create user catalog: %v\n", err)
	}

	fmt.Println("Data directory initialized successfully!")
	fmt.Printf("Start the shell with: lattice --config %s\n", cfgPath)
}

// runPlanDemo is the pre-flight-checked entry point for manual plan
// inspection: authenticate, then build and print a fixed demonstration
// query's Plan tree.
func runPlanDemo(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := config.ValidateDataDir(cfg.Storage.DataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'lattice init' to create a new data directory\n")
		os.Exit(1)
	}

	users, err := auth.NewUserCatalog(cfg.Storage.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading user catalog: %v\n", err)
		os.Exit(1)
	}
	if err := authenticateInteractive(users, "orders", auth.PrivSelect); err != nil {
		fmt.Fprintf(os.Stderr, "Access denied: %v\n", err)
		os.Exit(1)
	}

	cat, pl := demoCatalogAndPlanner(cfg)
	q := demoQuery()

	plan, err := pl.DoPlanner(q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Planning failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("tables: %v\n\n", cat.ListTables())
	fmt.Print(planner.Explain(plan))
}

// demoCatalogAndPlanner builds the fixed two-table schema the plan demo
// runs against: customers(id, name) and orders(id, customer_id, total)
// with an index on orders.customer_id. demoQuery's only predicate is the
// join predicate, so neither scan has local conditions for index matching
// and the printed plan does not use that index.
func demoCatalogAndPlanner(cfg *config.Config) (*catalog.Catalog, *planner.Planner) {
	cat, _ := catalog.NewCatalog("")
	_, _ = cat.CreateTable("customers", []catalog.ColMeta{
		{Name: "id", Type: catalog.TypeInt32},
		{Name: "name", Type: catalog.TypeText},
	})
	_, _ = cat.CreateTable("orders", []catalog.ColMeta{
		{Name: "id", Type: catalog.TypeInt32},
		{Name: "customer_id", Type: catalog.TypeInt32},
		{Name: "total", Type: catalog.TypeInt64},
	})
	_ = cat.CreateIndex("orders", catalog.IndexMeta{
		Name: "idx_orders_customer_id",
		Cols: []catalog.ColRef{{ColName: "customer_id"}},
	})

	log := logger.NewNop()
	pl := planner.New(cat, cfg.Planner, log)
	return cat, pl
}

func demoQuery() *planner.Query {
	return &planner.Query{
		Root: &ast.SelectStmt{
			Tables: []string{"customers", "orders"},
			Cols: []catalog.ColRef{
				{TabName: "customers", ColName: "name"},
				{TabName: "orders", ColName: "total"},
			},
		},
		Tables: []string{"customers", "orders"},
		Conds: []ast.Condition{
			{
				Lhs:      catalog.ColRef{TabName: "orders", ColName: "customer_id"},
				Op:       ast.OpEq,
				IsRhsVal: false,
				RhsCol:   catalog.ColRef{TabName: "customers", ColName: "id"},
			},
		},
		Cols: []catalog.ColRef{
			{TabName: "customers", ColName: "name"},
			{TabName: "orders", ColName: "total"},
		},
	}
}

// authenticateInteractive prompts for credentials on stdin and checks the
// resulting user against the requested table/privilege pair before the
// plan command runs, the same auth.UserCatalog access check the REPL's
// \plan command performs before planning.
func authenticateInteractive(users *auth.UserCatalog, table string, priv auth.Priv) error {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("username: ")
	username, _ := reader.ReadString('\n')
	username = trimNewline(username)

	fmt.Print("password: ")
	password, _ := reader.ReadString('\n')
	password = trimNewline(password)

	user, err := users.Authenticate(username, password)
	if err != nil {
		return err
	}
	return users.CheckAccess(user.Username, table, priv)
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
