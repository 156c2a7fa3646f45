// Package cli provides the command-line interface and REPL for lattice.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/latticedb/lattice/internal/config"
	"github.com/latticedb/lattice/internal/logger"
	"github.com/latticedb/lattice/pkg/ast"
	"github.com/latticedb/lattice/pkg/auth"
	"github.com/latticedb/lattice/pkg/catalog"
	"github.com/latticedb/lattice/pkg/planner"
)

// REPL implements the Read-Eval-Print Loop for lattice. SQL parsing and
// operator execution are out of scope (the ast package only models the
// shape an external parser would hand the planner), so the REPL's own
// job is: authenticate, expose the catalog for inspection, and run
// do_planner on a built-in demonstration Query via the \plan command.
type REPL struct {
	config  *config.Config
	log     *logger.Logger
	catalog *catalog.Catalog
	users   *auth.UserCatalog
	planner *planner.Planner

	rl   *readline.Instance
	user *auth.User
}

// NewREPL creates a new REPL instance.
func NewREPL(cfg *config.Config, log *logger.Logger, cat *catalog.Catalog, users *auth.UserCatalog) *REPL {
	return &REPL{
		config:  cfg,
		log:     log,
		catalog: cat,
		users:   users,
		planner: planner.New(cat, cfg.Planner, log),
	}
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	if err := r.login(); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	rlConfig := &readline.Config{
		Prompt:          "lattice> ",
		HistoryFile:     getHistoryFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    newCompleter(),
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.printWelcome()

	var multilineBuffer strings.Builder
	inMultiline := false

	for {
		if inMultiline {
			rl.SetPrompt("         -> ")
		} else {
			rl.SetPrompt("lattice> ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if inMultiline {
				multilineBuffer.Reset()
				inMultiline = false
				fmt.Println("^C")
				continue
			}
			continue
		} else if err == io.EOF {
			fmt.Println("\nGoodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		multilineBuffer.WriteString(line)
		fullInput := multilineBuffer.String()

		if strings.HasPrefix(fullInput, "\\") || strings.HasSuffix(fullInput, ";") {
			result := r.processCommand(strings.TrimSuffix(fullInput, ";"))
			if result == commandExit {
				fmt.Println("Goodbye!")
				return nil
			}
			multilineBuffer.Reset()
			inMultiline = false
		} else {
			multilineBuffer.WriteString(" ")
			inMultiline = true
		}
	}
}

// login authenticates against the user catalog before the REPL accepts
// any command, the same pre-flight check the `plan` CLI subcommand does.
func (r *REPL) login() error {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimSpace(password)

	user, err := r.users.Authenticate(username, password)
	if err != nil {
		return err
	}
	r.user = user
	return nil
}

type commandResult int

const (
	commandOK commandResult = iota
	commandExit
	commandError
)

func (r *REPL) processCommand(input string) commandResult {
	input = strings.TrimSpace(input)
	upperInput := strings.ToUpper(input)

	if strings.HasPrefix(input, "\\") {
		return r.handleBackslashCommand(input)
	}

	switch {
	case upperInput == "EXIT" || upperInput == "QUIT" || upperInput == "\\Q":
		return commandExit

	case upperInput == "HELP" || upperInput == "\\?" || upperInput == "\\HELP":
		r.printHelp()
		return commandOK

	case strings.HasPrefix(upperInput, "CREATE TABLE"),
		strings.HasPrefix(upperInput, "INSERT"),
		strings.HasPrefix(upperInput, "SELECT"),
		strings.HasPrefix(upperInput, "UPDATE"),
		strings.HasPrefix(upperInput, "DELETE"):
		fmt.Println("Note: SQL parsing is out of scope for this module.")
		fmt.Println("Use \\plan to see the planner run against a demonstration query,")
		fmt.Println("or \\dt / \\di / \\d <table> to inspect the catalog directly.")
		return commandOK

	case strings.HasPrefix(upperInput, "BEGIN"), strings.HasPrefix(upperInput, "COMMIT"), strings.HasPrefix(upperInput, "ROLLBACK"):
		fmt.Println("Note: transactions are out of scope for this module.")
		return commandOK

	default:
		fmt.Printf("Unknown command: %s\n", input)
		fmt.Println("Type HELP; for available commands")
		return commandError
	}
}

func (r *REPL) handleBackslashCommand(input string) commandResult {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return commandOK
	}

	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "\\q", "\\quit", "\\exit":
		return commandExit

	case "\\?", "\\help":
		r.printHelp()
		return commandOK

	case "\\dt", "\\tables":
		r.listTables()
		return commandOK

	case "\\di", "\\indexes":
		r.listIndexes()
		return commandOK

	case "\\d":
		if len(parts) > 1 {
			r.describeTable(parts[1])
		} else {
			fmt.Println("Usage: \\d <table_name>")
		}
		return commandOK

	case "\\plan":
		r.runDemoPlan()
		return commandOK

	case "\\status":
		r.printStatus()
		return commandOK

	case "\\config":
		r.printConfig()
		return commandOK

	case "\\clear":
		fmt.Print("\033[H\033[2J")
		return commandOK

	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		fmt.Println("Type \\? for help")
		return commandError
	}
}

func (r *REPL) listTables() {
	names := r.catalog.ListTables()
	if len(names) == 0 {
		fmt.Println("(no tables)")
		return
	}
	for _, n := range names {
		fmt.Println(n)
	}
}

func (r *REPL) listIndexes() {
	any := false
	for _, name := range r.catalog.ListTables() {
		tab, err := r.catalog.GetTable(name)
		if err != nil {
			continue
		}
		for _, idx := range tab.Indexes {
			any = true
			fmt.Printf("%s on %s%v\n", idx.Name, tab.Name, idx.ColNames())
		}
	}
	if !any {
		fmt.Println("(no indexes)")
	}
}

func (r *REPL) describeTable(name string) {
	tab, err := r.catalog.GetTable(name)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Table %q\n", tab.Name)
	for _, c := range tab.Cols {
		fmt.Printf("  %-20s %s\n", c.Name, c.Type)
	}
	for _, idx := range tab.Indexes {
		fmt.Printf("  index %s%v\n", idx.Name, idx.ColNames())
	}
}

// runDemoPlan runs the planner against a single-table SELECT over the
// first name ListTables returns, giving an operator a way to see
// do_planner's output without a SQL parser. If the catalog has no tables
// it reports that instead of failing silently.
func (r *REPL) runDemoPlan() {
	names := r.catalog.ListTables()
	if len(names) == 0 {
		fmt.Println("(no tables to plan against — try \\dt after creating some via the catalog API)")
		return
	}

	tab := names[0]
	if err := r.users.CheckAccess(r.user.Username, tab, auth.PrivSelect); err != nil {
		fmt.Printf("Access denied: %v\n", err)
		return
	}

	q := &planner.Query{
		Root:   &ast.SelectStmt{Tables: []string{tab}},
		Tables: []string{tab},
	}
	plan, err := r.planner.DoPlanner(q)
	if err != nil {
		fmt.Printf("Planning failed: %v\n", err)
		return
	}
	fmt.Print(planner.Explain(plan))
}

func (r *REPL) printWelcome() {
	fmt.Println(`
  _       _   _   _
 | | __ _| |_| |_(_) ___ ___
 | |/ _' | __| __| |/ __/ _ \
 | | (_| | |_| |_| | (_|  __/
 |_|\__,_|\__|\__|_|\___\___|

    external merge sort + query planner toolkit
    Type HELP; or \? for available commands
    `)
}

func (r *REPL) printHelp() {
	fmt.Println(`
lattice Commands
================

SQL keywords are recognized but not executed (no SQL parser in scope):
  CREATE TABLE / INSERT / SELECT / UPDATE / DELETE

Backslash Commands:
  \dt, \tables                     List all tables
  \di, \indexes                    List all indexes
  \d <table>                       Describe a table
  \plan                            Run the planner against a demo query
  \status                          Show server status
  \config                          Show configuration
  \clear                           Clear screen
  \?, \help                        Show this help
  \q, \quit                        Exit

Other:
  EXIT; or QUIT;                   Exit the shell
  HELP;                            Show this help

Note: Commands must end with ; (semicolon)
      Backslash commands do not need ;`)
}

func (r *REPL) printStatus() {
	fmt.Println("\nlattice Status")
	fmt.Println("==============")
	fmt.Printf("User:       %s\n", r.user.Username)
	fmt.Printf("Data Dir:   %s\n", r.config.Storage.DataDir)
	fmt.Printf("Log Level:  %s\n", r.config.Log.Level)
	fmt.Println()
}

func (r *REPL) printConfig() {
	fmt.Println("\nCurrent Configuration")
	fmt.Println("=====================")
	fmt.Printf("Storage:\n")
	fmt.Printf("  Data Directory:   %s\n", r.config.Storage.DataDir)
	fmt.Printf("  Page Size:        %d bytes\n", r.config.Storage.PageSize)
	fmt.Printf("\nPlanner:\n")
	fmt.Printf("  Nested loop join: %t\n", r.config.Planner.EnableNestedLoopJoin)
	fmt.Printf("  Sort-merge join:  %t\n", r.config.Planner.EnableSortMergeJoin)
	fmt.Printf("\nSort:\n")
	fmt.Printf("  Records/page:     %d\n", r.config.Sort.RecordsPerPage)
	fmt.Printf("  Records/file:     %d\n", r.config.Sort.RecordsPerFile)
	fmt.Printf("\nLogging:\n")
	fmt.Printf("  Level:            %s\n", r.config.Log.Level)
	fmt.Printf("  Format:           %s\n", r.config.Log.Format)
	fmt.Printf("  Output:           %s\n", r.config.Log.Output)
	fmt.Println()
}

func getHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.lattice_history"
}

// newCompleter creates an auto-completer for the REPL.
func newCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("SELECT"),
		readline.PcItem("INSERT"),
		readline.PcItem("UPDATE"),
		readline.PcItem("DELETE"),
		readline.PcItem("CREATE",
			readline.PcItem("TABLE"),
			readline.PcItem("INDEX"),
		),
		readline.PcItem("DROP",
			readline.PcItem("TABLE"),
			readline.PcItem("INDEX"),
		),
		readline.PcItem("HELP"),
		readline.PcItem("EXIT"),
		readline.PcItem("QUIT"),
		readline.PcItem("\\dt"),
		readline.PcItem("\\di"),
		readline.PcItem("\\d"),
		readline.PcItem("\\plan"),
		readline.PcItem("\\status"),
		readline.PcItem("\\config"),
		readline.PcItem("\\clear"),
		readline.PcItem("\\help"),
		readline.PcItem("\\q"),
	)
}
