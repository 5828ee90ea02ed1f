package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"the305/accountant/cmd/budget"
	"the305/accountant/cmd/categorize"
	"the305/accountant/cmd/ingest"
	"the305/accountant/cmd/root"
	"the305/accountant/cmd/rules"
)

func init() {
	loadEnvSilently()

	root.Init()
	ingest.Init()
	rules.Init()
	categorize.Init()
	budget.Init()

	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(rules.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(budget.Cmd)
}

// loadEnvSilently loads a .env file before any configuration is read,
// without logging. GEMINI_API_KEY typically lives there.
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
