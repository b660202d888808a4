package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-hockey-metrics/internal/report"
	"github.com/pable/go-hockey-metrics/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cGreeting.Println("hockeymetrics shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("hockeymetrics")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			shellList(db)
		case "show":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: show <game-id> [--player <id>] [--shots]")
				continue
			}
			shellShow(db, args)
		case "player":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: player <player-id> [<player-id>...]")
				continue
			}
			for _, a := range args {
				id, err := strconv.ParseInt(a, 10, 64)
				if err != nil {
					cError.Fprintf(os.Stderr, "invalid player id %q\n", a)
					continue
				}
				if err := printPlayerTrend(os.Stdout, db, id); err != nil {
					cError.Fprintf(os.Stderr, "error: %v\n", err)
				}
			}
		case "sql":
			shellSQL(db, strings.TrimSpace(strings.TrimPrefix(line, cmd)))
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list all stored games"},
		{"show <game-id>", "show a game's per-player, per-period metrics"},
		{"show <game-id> --player <id>", "same, highlighting one player"},
		{"show <game-id> --shots", "also list every shot attempt"},
		{"player <player-id> [...]", "per-game trend for one or more players"},
		{"sql <query>", "run a raw SQL query"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellList(db *storage.DB) {
	games, err := db.ListGames()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(games) == 0 {
		cMuted.Println("No games stored yet.")
		return
	}
	report.PrintGameList(os.Stdout, games)
}

func shellShow(db *storage.DB, args []string) {
	a, err := parseShowArgs(args)
	if err != nil {
		cError.Fprintln(os.Stderr, err)
		return
	}
	if err := printGame(os.Stdout, db, a.gameID, a.playerID, a.shots); err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

type showArgs struct {
	gameID   int64
	playerID int64
	shots    bool
}

// parseShowArgs parses "<game-id> [--player <id>] [--shots]".
func parseShowArgs(args []string) (showArgs, error) {
	var a showArgs
	if len(args) == 0 {
		return a, fmt.Errorf("usage: show <game-id> [--player <id>] [--shots]")
	}
	var err error
	if a.gameID, err = parseGameID(args[0]); err != nil {
		return a, err
	}
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--player":
			if i+1 >= len(args) {
				return a, fmt.Errorf("--player needs a player id")
			}
			id, err := strconv.ParseInt(args[i+1], 10, 64)
			if err != nil || id <= 0 {
				return a, fmt.Errorf("invalid player id %q", args[i+1])
			}
			a.playerID = id
			i++
		case "--shots":
			a.shots = true
		default:
			return a, fmt.Errorf("unknown option %q", args[i])
		}
	}
	return a, nil
}

func shellSQL(db *storage.DB, query string) {
	if query == "" {
		cError.Fprintln(os.Stderr, "usage: sql <query>")
		return
	}
	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	cHeader.Println(strings.Join(cols, " | "))
	for _, r := range rows {
		fmt.Println(strings.Join(r, " | "))
	}
	cMuted.Printf("(%d rows)\n", len(rows))
}
