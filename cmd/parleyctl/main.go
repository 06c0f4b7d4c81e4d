package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pcordeiro/parley/internal/auth"
	"github.com/pcordeiro/parley/internal/config"
	"github.com/pcordeiro/parley/internal/lock"
	"github.com/pcordeiro/parley/internal/store"
	"github.com/pcordeiro/parley/internal/workdir"
)

func main() {
	dataFlag := flag.String("data", "", "data directory (default ~/.parley)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	dataDir := *dataFlag
	if dataDir == "" {
		dataDir = workdir.Default()
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "status":
		cmdStatus(dataDir, *jsonFlag)
	case "migrate":
		cmdMigrate(dataDir, *jsonFlag)
	case "create-user":
		cmdCreateUser(dataDir, args[1:], *jsonFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: parleyctl [--data <dir>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status           Query the running daemon's health endpoint")
	fmt.Fprintln(os.Stderr, "  migrate          Apply pending schema migrations (daemon must be stopped)")
	fmt.Fprintln(os.Stderr, "  create-user      Create a user account (daemon must be stopped)")
	fmt.Fprintln(os.Stderr, "                   flags: --email --name --password")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// openExclusive takes the data dir lock and opens the store, so offline
// commands never race a running daemon.
func openExclusive(dataDir string) (*lock.Lock, *store.DB) {
	if err := workdir.EnsureDirs(dataDir); err != nil {
		fatal(err)
	}
	l, err := lock.Acquire(dataDir)
	if err != nil {
		fatal(err)
	}
	db, err := store.Open(workdir.DBPath(dataDir))
	if err != nil {
		_ = l.Release()
		fatal(err)
	}
	return l, db
}

func cmdStatus(dataDir string, jsonOut bool) {
	cfg, err := config.Load(workdir.ConfigPath(dataDir))
	if err != nil {
		fatal(fmt.Errorf("load config: %w", err))
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + cfg.ListenAddr + "/healthz")
	if err != nil {
		fatal(fmt.Errorf("daemon not reachable at %s: %w", cfg.ListenAddr, err))
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)

	if jsonOut {
		fmt.Println(string(body))
		return
	}
	var parsed struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &parsed)
	fmt.Printf("Addr:   %s\n", cfg.ListenAddr)
	fmt.Printf("Status: %s\n", parsed.Status)
}

func cmdMigrate(dataDir string, jsonOut bool) {
	l, db := openExclusive(dataDir)
	defer func() { _ = l.Release() }()
	defer func() { _ = db.Close() }()

	result, err := db.Migrate()
	if err != nil {
		fatal(err)
	}
	if jsonOut {
		outputJSON(result)
		return
	}
	if result.Changed {
		fmt.Printf("Migrated to version %d\n", result.Version)
	} else {
		fmt.Printf("Already at version %d\n", result.Version)
	}
}

func cmdCreateUser(dataDir string, args []string, jsonOut bool) {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	name := fs.String("name", "", "full name")
	password := fs.String("password", "", "password (min 6 characters)")
	_ = fs.Parse(args)

	if *email == "" || *name == "" || len(*password) < 6 {
		fmt.Fprintln(os.Stderr, "usage: parleyctl create-user --email <email> --name <name> --password <password>")
		os.Exit(1)
	}

	cfg, err := config.LoadOrInit(workdir.ConfigPath(dataDir))
	if err != nil {
		fatal(err)
	}

	l, db := openExclusive(dataDir)
	defer func() { _ = l.Release() }()
	defer func() { _ = db.Close() }()
	if _, err := db.Migrate(); err != nil {
		fatal(err)
	}

	mgr := auth.NewManager(cfg.TokenSecret, time.Hour, cfg.BcryptCost)
	hash, err := mgr.HashPassword(*password)
	if err != nil {
		fatal(err)
	}
	u := &store.User{
		ID:           uuid.NewString(),
		Email:        *email,
		FullName:     *name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UnixMilli(),
	}
	if err := db.CreateUser(u); err != nil {
		fatal(err)
	}

	if jsonOut {
		outputJSON(map[string]string{"id": u.ID, "email": u.Email})
		return
	}
	fmt.Printf("Created user %s (%s)\n", u.Email, u.ID)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
