// Command planeje-rules inspects and validates automation rule documents
// stored on local storage, without going through the API.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/jbapex/planeje/internal/automation"
	automationrepo "github.com/jbapex/planeje/internal/automation/repositoryimpl"
)

var (
	app     = kingpin.New("planeje-rules", "Inspect and validate planeje automation rules")
	dataDir = app.Flag("data-dir", "Storage base directory").Default(".planeje/data").String()

	listCmd = app.Command("list", "List automation rules")

	validateCmd   = app.Command("validate", "Validate automation rule documents")
	validateFiles = validateCmd.Arg("file", "Rule files to validate (defaults to all rules in the data dir)").Strings()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	switch command {
	case listCmd.FullCommand():
		if err := runList(*dataDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case validateCmd.FullCommand():
		files := *validateFiles
		if len(files) == 0 {
			var err error
			files, err = ruleFiles(*dataDir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		if !runValidate(files) {
			os.Exit(1)
		}
	}
}

func ruleFiles(dataDir string) ([]string, error) {
	dir := filepath.Join(dataDir, automationrepo.RulesPrefix)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func loadRule(path string) (*automation.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rule automation.Rule
	if err := yaml.Unmarshal(data, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

func runList(dataDir string) error {
	files, err := ruleFiles(dataDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("no automation rules found")
		return nil
	}
	active := color.New(color.FgGreen).SprintFunc()
	inactive := color.New(color.FgHiBlack).SprintFunc()
	for _, path := range files {
		rule, err := loadRule(path)
		if err != nil {
			color.Red("%s: %v", filepath.Base(path), err)
			continue
		}
		state := active("active")
		if !rule.Active {
			state = inactive("inactive")
		}
		fmt.Printf("%s  %-8s  %-14s  %d action(s)  %s\n",
			rule.ID, state, rule.TriggerType, len(rule.Actions), rule.Name)
	}
	return nil
}

func runValidate(files []string) bool {
	ok := true
	for _, path := range files {
		rule, err := loadRule(path)
		if err == nil {
			err = rule.Validate()
		}
		if err != nil {
			color.Red("FAIL  %s: %v", path, err)
			ok = false
			continue
		}
		color.Green("OK    %s", path)
	}
	return ok
}
