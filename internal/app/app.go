package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "check":
		return runCheck(args[1:])
	case "review":
		return runReview(args[1:])
	case "accept":
		return runAccept(args[1:])
	case "reject":
		return runReject(args[1:])
	case "stats":
		return runStats(args[1:])
	case "cluster":
		return runCluster(args[1:])
	case "stubs":
		return runStubs(args[1:])
	case "fetch":
		return runFetch(args[1:])
	case "sheets":
		return runSheets(args[1:])
	case "validate":
		return runValidate(args[1:])
	case "migrate":
		return runMigrate(args[1:])
	case "health":
		return runHealth(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "threatwatch CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  threatwatch <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  check     Match the stub batch against known incidents")
	fmt.Fprintln(os.Stderr, "  review    List matches waiting for a human decision")
	fmt.Fprintln(os.Stderr, "  accept    Confirm a pending match as a duplicate")
	fmt.Fprintln(os.Stderr, "  reject    Mark a pending match as not a duplicate")
	fmt.Fprintln(os.Stderr, "  stats     Show dedup decision counts and false-positive rate")
	fmt.Fprintln(os.Stderr, "  cluster   Re-cluster the news feed by headline")
	fmt.Fprintln(os.Stderr, "  stubs     Turn news feed articles into stub incidents")
	fmt.Fprintln(os.Stderr, "  fetch     Pull news articles from RSS sources")
	fmt.Fprintln(os.Stderr, "  sheets    Import incidents from a published spreadsheet")
	fmt.Fprintln(os.Stderr, "  validate  Validate a data document against its schema")
	fmt.Fprintln(os.Stderr, "  migrate   Export incidents and dedup decisions to PostgreSQL")
	fmt.Fprintln(os.Stderr, "  health    Verify database connectivity")
	fmt.Fprintln(os.Stderr, "  serve     Start the review API server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"threatwatch <command> -h\" for command-specific flags.")
}
