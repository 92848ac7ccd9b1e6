package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"bitbucket.org/mmdatafocus/imis_backend/config"
	"bitbucket.org/mmdatafocus/imis_backend/registers"
)

// register-import loads a register XML file straight into the database,
// bypassing the HTTP API. Meant for initial data loads and migrations.
func main() {
	filePath := flag.String("file", "", "path to the register XML file")
	register := flag.String("register", "", "register to load: diagnoses, locations, health_facilities, items, services")
	strategy := flag.String("strategy", registers.StrategyInsert, "INSERT, UPDATE, INSERT_UPDATE or INSERT_UPDATE_DELETE")
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	userId := flag.Int("user", 0, "audit user id recorded on every change")
	flag.Parse()

	if *filePath == "" || *register == "" {
		flag.Usage()
		os.Exit(2)
	}
	if !registers.IsValidStrategy(*strategy) {
		fmt.Fprintf(os.Stderr, "unknown strategy '%s'\n", *strategy)
		os.Exit(2)
	}

	godotenv.Load()
	config.ConnectDatabaseWithRetry()

	file, err := os.Open(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open %s: %v\n", *filePath, err)
		os.Exit(1)
	}
	defer file.Close()

	ctx := context.Background()
	var result *registers.UploadResult
	switch strings.ToLower(*register) {
	case "diagnoses":
		result, err = registers.UploadDiagnoses(ctx, *userId, file, *strategy, *dryRun)
	case "locations":
		result, err = registers.UploadLocations(ctx, *userId, file, *strategy, *dryRun)
	case "health_facilities":
		result, err = registers.UploadHealthFacilities(ctx, *userId, file, *strategy, *dryRun)
	case "items":
		result, err = registers.UploadItems(ctx, *userId, file, *strategy, *dryRun)
	case "services":
		result, err = registers.UploadServices(ctx, *userId, file, *strategy, *dryRun)
	default:
		fmt.Fprintf(os.Stderr, "unknown register '%s'\n", *register)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "upload failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result.Response(), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not render result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}
